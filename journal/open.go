package journal

import "fmt"

const (
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
	TypeCSV    = "csv"
)

type Options struct {
	Type       string
	DBPath     string
	TradesFile string
	EquityFile string
}

// Open builds the journal selected by opts.Type. An empty type means memory.
func Open(opts Options) (Journal, error) {
	switch opts.Type {
	case "", TypeMemory:
		return NewMemory(), nil
	case TypeSQLite:
		if opts.DBPath == "" {
			return nil, fmt.Errorf("sqlite journal requires a db path")
		}
		return NewSQLite(opts.DBPath)
	case TypeCSV:
		if opts.TradesFile == "" || opts.EquityFile == "" {
			return nil, fmt.Errorf("csv journal requires trades and equity files")
		}
		return NewCSV(opts.TradesFile, opts.EquityFile)
	default:
		return nil, fmt.Errorf("unknown journal type %q", opts.Type)
	}
}
