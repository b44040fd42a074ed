package advisor

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/enetx/g"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Product is an installable appliance model.
type Product struct {
	Category     g.String          `yaml:"category"`
	Brand        g.String          `yaml:"brand"`
	Model        g.String          `yaml:"model"`
	Features     g.Slice[g.String] `yaml:"features"`
	PriceMin     int               `yaml:"price_min"`
	PriceMax     int               `yaml:"price_max"`
	Installation g.String          `yaml:"installation"`
	Tags         g.Slice[g.String] `yaml:"tags"`
	Sizes        g.Slice[g.String] `yaml:"sizes"`
}

// Catalog is an ordered product list. Order breaks ranking ties.
type Catalog struct {
	Products g.Slice[Product] `yaml:"products"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	c, err := LoadCatalog(bytes.NewReader(builtin))
	if err != nil {
		panic(err)
	}

	return c
}

// LoadCatalog reads a YAML catalog.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}

	for i, p := range c.Products {
		if p.Category == "" || p.Model == "" {
			return Catalog{}, fmt.Errorf("advisor: product %d has no category or model", i+1)
		}

		if p.PriceMax < p.PriceMin {
			return Catalog{}, fmt.Errorf("advisor: product %q has an inverted price range", p.Model)
		}
	}

	return c, nil
}

// Category returns the products of one category in catalog order.
func (c Catalog) Category(name g.String) g.Slice[Product] {
	var out g.Slice[Product]

	for _, p := range c.Products {
		if p.Category == name {
			out.Push(p)
		}
	}

	return out
}
