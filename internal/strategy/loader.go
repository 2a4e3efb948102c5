package strategy

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed tables/default.hcl
var defaultTable []byte

// TableLoader supplies a strategy table to the resolver.
type TableLoader interface {
	Load() (*Table, error)
}

// EmbeddedLoader loads the table compiled into the binary.
type EmbeddedLoader struct{}

func (EmbeddedLoader) Load() (*Table, error) {
	return ParseTable(defaultTable, "default.hcl")
}

// FileLoader loads a table from disk.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load() (*Table, error) {
	src, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strategy table: %w", err)
	}
	return ParseTable(src, l.Path)
}

// DefaultTable returns the embedded table. It panics if the embedded file
// does not compile, which the package tests rule out.
func DefaultTable() *Table {
	t, err := EmbeddedLoader{}.Load()
	if err != nil {
		panic(err)
	}
	return t
}
