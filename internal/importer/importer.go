// Package importer turns payment statements dropped in <project>/import/
// into rent receipts.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/rental"
)

// Payment is one incoming rent payment read from a statement.
type Payment struct {
	Line        int
	Date        time.Time
	TenantRef   string // tenant ID or ID card number
	Amount      decimal.Decimal
	PeriodStart time.Time // zero = payment month
	PeriodEnd   time.Time
	Reference   string
}

// Parser converts a statement file into Payments.
type Parser interface {
	Parse(r io.Reader) ([]Payment, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers. Dates in
// statements are read in loc.
func DefaultRegistry(loc *time.Location) *Registry {
	r := NewRegistry()
	r.Register(&StatementParser{Location: loc})
	return r
}

const (
	importDir    = "import"
	processedDir = "import/processed"
)

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(src, filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// Skipped is a payment that could not become a receipt.
type Skipped struct {
	Payment Payment
	Err     error
}

// Result summarises one import run.
type Result struct {
	Receipts []model.Receipt
	Skipped  []Skipped
}

// Apply records each payment as a receipt. Payments whose tenant cannot be
// resolved or that fail validation are skipped; store failures abort.
func Apply(ctx context.Context, svc *rental.Service, payments []Payment) (Result, error) {
	tenants, err := svc.Tenants(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading tenants: %w", err)
	}

	var res Result
	for _, p := range payments {
		t, ok := resolveTenant(tenants, p.TenantRef)
		if !ok {
			res.Skipped = append(res.Skipped, Skipped{Payment: p, Err: fmt.Errorf("unknown tenant %q", p.TenantRef)})
			continue
		}
		r, err := svc.AddReceipt(ctx, rental.ReceiptParams{
			TenantID:    t.ID,
			Amount:      p.Amount,
			PaymentDate: p.Date,
			PeriodStart: p.PeriodStart,
			PeriodEnd:   p.PeriodEnd,
		})
		if err != nil {
			if model.IsValidation(err) {
				res.Skipped = append(res.Skipped, Skipped{Payment: p, Err: err})
				continue
			}
			return res, fmt.Errorf("line %d: %w", p.Line, err)
		}
		res.Receipts = append(res.Receipts, r)
	}
	return res, nil
}

func resolveTenant(tenants []model.Tenant, ref string) (model.Tenant, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Tenant{}, false
	}
	for _, t := range tenants {
		if t.ID == ref {
			return t, true
		}
	}
	for _, t := range tenants {
		if t.IDNumber != "" && strings.EqualFold(t.IDNumber, ref) {
			return t, true
		}
	}
	return model.Tenant{}, false
}
