package markup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Definition is a named component defined in markup.
type Definition struct {
	Name   string
	Params []string
	Root   Node
	Pos    Pos
}

// Document is a decoded template file: component definitions plus an
// optional page tree.
type Document struct {
	// Name identifies the document, usually the file name without extension.
	Name string

	// File is the path the document was read from, used in error locations.
	File string

	Components map[string]*Definition
	Page       Node
}

// ComponentNames returns the defined component names in sorted order.
func (d *Document) ComponentNames() []string {
	names := make([]string, 0, len(d.Components))
	for name := range d.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeFile reads and decodes the document at path.
func DecodeFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, DocumentName(path), path)
}

// DocumentName derives a document name from a file path.
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
