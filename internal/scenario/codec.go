package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var defaultCatalogYAML []byte

// document is the on-disk layout of a catalog file.
type document struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Decode reads a YAML catalog. Unknown keys, including impact keys that do
// not name a state field, are rejected.
func Decode(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("decode catalog: %w: empty document", ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(doc.Scenarios)
}

// Encode writes the catalog as YAML in play order.
func Encode(w io.Writer, c *Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Scenarios: c.scenarios}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Decode(bytes.NewReader(defaultCatalogYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded scenario catalog: %v", err))
	}
	return c
}
