package history

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lox/gtotrainer/internal/fileutil"
)

// ExportFile is the TOML document written by EncodeTOML.
type ExportFile struct {
	Exported  time.Time        `toml:"exported"`
	Count     int              `toml:"count"`
	Decisions []DecisionRecord `toml:"decision"`
}

// EncodeTOML writes recs as a TOML document with one [[decision]] table
// per record.
func EncodeTOML(w io.Writer, exported time.Time, recs []DecisionRecord) error {
	doc := ExportFile{
		Exported:  exported.UTC(),
		Count:     len(recs),
		Decisions: recs,
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return nil
}

// DecodeTOML reads a document written by EncodeTOML.
func DecodeTOML(r io.Reader) (*ExportFile, error) {
	var doc ExportFile
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	for i := range doc.Decisions {
		if err := doc.Decisions[i].RestoreCards(); err != nil {
			return nil, fmt.Errorf("decode history: decision %d: %w", i, err)
		}
	}
	return &doc, nil
}

// WriteFile exports recs to path. Readers never observe a partial file.
func WriteFile(path string, exported time.Time, recs []DecisionRecord) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return EncodeTOML(w, exported, recs)
	})
}

// ReadFile loads an export written by WriteFile.
func ReadFile(path string) (*ExportFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTOML(f)
}
