package store

import (
	"fmt"
	"path/filepath"
)

// Non-SQL drivers.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string // file, memory, sqlite, postgres
	Root   string // project directory; file data and the default sqlite db live here
	DSN    string // sqlite path or postgres connection string
}

// Open returns the backend described by opts.
func Open(opts Options) (*Backend, error) {
	switch opts.Driver {
	case DriverFile, "":
		return OpenFile(opts.Root)
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = filepath.Join(opts.Root, "rentbook.db")
		}
		return OpenSQL(DriverSQLite, dsn)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires a DSN")
		}
		return OpenSQL(DriverPostgres, opts.DSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}
