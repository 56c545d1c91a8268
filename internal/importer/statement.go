package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rentbook-dev/rentbook/internal/model"
)

// StatementParser reads the agency's payment statement export:
// date,tenant,amount,period_start,period_end,reference
// Dates are read in Location; nil means UTC.
type StatementParser struct {
	Location *time.Location
}

const (
	statementDateFormat = "2006-01-02"
	statementNumFields  = 6
	statementColDate    = 0
	statementColTenant  = 1
	statementColAmount  = 2
	statementColStart   = 3
	statementColEnd     = 4
	statementColRef     = 5
)

// Format returns the parser name.
func (p *StatementParser) Format() string { return "statement" }

// Parse reads a statement CSV. The first row is a header.
func (p *StatementParser) Parse(r io.Reader) ([]Payment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = statementNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var payments []Payment
	for i, rec := range records[1:] {
		line := i + 2
		pay, err := p.parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		pay.Line = line
		payments = append(payments, pay)
	}
	return payments, nil
}

func (p *StatementParser) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p *StatementParser) parseRow(rec []string) (Payment, error) {
	date, err := time.ParseInLocation(statementDateFormat, strings.TrimSpace(rec[statementColDate]), p.loc())
	if err != nil {
		return Payment{}, fmt.Errorf("parsing date %q: %w", rec[statementColDate], err)
	}

	amount, ok := model.CoerceAmount(rec[statementColAmount])
	if !ok {
		return Payment{}, fmt.Errorf("parsing amount %q", rec[statementColAmount])
	}

	start, err := p.optionalDate(rec[statementColStart])
	if err != nil {
		return Payment{}, fmt.Errorf("parsing period_start: %w", err)
	}
	end, err := p.optionalDate(rec[statementColEnd])
	if err != nil {
		return Payment{}, fmt.Errorf("parsing period_end: %w", err)
	}
	if start.IsZero() != end.IsZero() {
		return Payment{}, errors.New("period_start and period_end must be given together")
	}

	return Payment{
		Date:        date,
		TenantRef:   strings.TrimSpace(rec[statementColTenant]),
		Amount:      amount,
		PeriodStart: start,
		PeriodEnd:   end,
		Reference:   strings.TrimSpace(rec[statementColRef]),
	}, nil
}

func (p *StatementParser) optionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(statementDateFormat, s, p.loc())
}
