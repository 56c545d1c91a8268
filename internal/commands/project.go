package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rentbook-dev/rentbook/internal/config"
	"github.com/rentbook-dev/rentbook/internal/gitops"
	"github.com/rentbook-dev/rentbook/internal/ledger"
	"github.com/rentbook-dev/rentbook/internal/logging"
	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/rental"
	"github.com/rentbook-dev/rentbook/internal/store"
)

const dateLayout = "2006-01-02"

// project is an opened rentbook project directory.
type project struct {
	dir     string
	cfg     *config.Config
	log     *logrus.Logger
	backend *store.Backend
	account string
	loc     *time.Location
	now     func() time.Time
	rental  *rental.Service
	out     io.Writer
}

// openProject loads <dir>/rentbook.yaml and .env, opens the store and
// builds the rental service for the selected account.
func openProject(cmd *cobra.Command, g *globals) (*project, error) {
	dir, err := filepath.Abs(g.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if err := config.LoadEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a rentbook project (run rentbook init)", dir)
	}
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg, os.Getenv)

	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, err
	}
	now, err := clock(g.today, loc)
	if err != nil {
		return nil, err
	}

	backend, err := store.Open(store.Options{Driver: cfg.Store.Driver, Root: dir, DSN: cfg.Store.DSN})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	account := g.account
	if account == "" {
		account = cfg.Agency.Account
	}
	st := store.Audited(backend.Account(account), account, actor(), dir, log)

	svc := rental.NewService(st, log.WithField("account_id", account))
	svc.SetClock(now)

	return &project{
		dir:     dir,
		cfg:     cfg,
		log:     log,
		backend: backend,
		account: account,
		loc:     loc,
		now:     now,
		rental:  svc,
		out:     cmd.OutOrStdout(),
	}, nil
}

// Close releases the store.
func (p *project) Close() error {
	return p.backend.Close()
}

func (p *project) classifier() ledger.Classifier {
	return ledger.Classifier{GraceDay: p.cfg.Ledger.GraceDay, Location: p.loc}
}

func (p *project) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func commissionOf(o model.Owner, agency *model.Agency) string {
	return ledger.CommissionRate(&o, agency).String()
}

// commit records the change in git when auto-commit is on and the project
// is a repository. Failures are reported but do not fail the command.
func (p *project) commit(ctx context.Context, message string) {
	if !p.cfg.Git.AutoCommit {
		return
	}
	repo := gitops.New(p.dir, p.cfg.Git.AuthorName, p.cfg.Git.AuthorEmail)
	if !repo.IsRepo() {
		return
	}
	hash, err := repo.Commit(ctx, message)
	if err != nil {
		p.log.WithError(err).Warn("Auto-commit failed")
		return
	}
	if hash != "" {
		p.log.WithField("commit", hash).Debug("Committed")
	}
}

// withProject opens the project, runs fn and closes the project.
func withProject(g *globals, fn func(cmd *cobra.Command, p *project, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd, g)
		if err != nil {
			return err
		}
		defer p.Close()
		return fn(cmd, p, args)
	}
}

func actor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}

// clock returns the source of "now". A --today override pins it to noon of
// that day in loc.
func clock(today string, loc *time.Location) (func() time.Time, error) {
	if today == "" {
		return func() time.Time { return time.Now().In(loc) }, nil
	}
	d, err := time.ParseInLocation(dateLayout, today, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing --today: %w", err)
	}
	pinned := d.Add(12 * time.Hour)
	return func() time.Time { return pinned }, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, ok := model.CoerceAmount(strings.TrimSpace(s))
	if !ok {
		return decimal.Zero, model.ValidationError{Field: field, Message: fmt.Sprintf("invalid amount %q", s)}
	}
	return d, nil
}

func parseOptionalAmount(field, s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseAmount(field, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDate(field, s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, model.ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", s)}
	}
	return d, nil
}
