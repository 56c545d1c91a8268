package rental

import (
	"context"
	"strings"

	"github.com/rentbook-dev/rentbook/internal/model"
)

// Agency returns the account's agency profile, or nil when none is saved.
func (s *Service) Agency(ctx context.Context) (*model.Agency, error) {
	agencies, err := list[model.Agency](ctx, s, model.CollAgencies)
	if err != nil {
		return nil, err
	}
	if len(agencies) == 0 {
		return nil, nil
	}
	a := agencies[0]
	return &a, nil
}

// SaveAgency creates or replaces the single agency profile of the account.
func (s *Service) SaveAgency(ctx context.Context, a model.Agency) (model.Agency, error) {
	a.Name = strings.TrimSpace(a.Name)

	var errs model.ValidationErrors
	if a.Name == "" {
		errs.Add("name", "is required")
	}
	validateRate(&errs, a.CommissionRate)
	if err := errs.Err(); err != nil {
		return model.Agency{}, err
	}

	current, err := s.Agency(ctx)
	if err != nil {
		return model.Agency{}, err
	}

	var out model.Agency
	if current == nil {
		a.ID = ""
		err = s.create(ctx, model.CollAgencies, a, &out)
	} else {
		a.ID = current.ID
		err = s.update(ctx, model.CollAgencies, current.ID, a, &out)
	}
	if err != nil {
		return model.Agency{}, err
	}
	return out, nil
}
