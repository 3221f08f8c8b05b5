// Package seed loads a product catalog from YAML.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/good2go/storefront/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PlaceholderImage is used for products listed without images.
const PlaceholderImage = "https://placehold.co/600x400.png"

//go:embed catalog.yaml
var defaultCatalog []byte

type badge struct {
	Type string `yaml:"type"`
	Text string `yaml:"text"`
}

type product struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Price       string   `yaml:"price"`
	Category    string   `yaml:"category"`
	Summary     string   `yaml:"summary"`
	Description string   `yaml:"description"`
	ImageURLs   []string `yaml:"imageUrls"`
	DataAIHint  string   `yaml:"dataAiHint"`
	Badge       *badge   `yaml:"badge"`
	Qty         int      `yaml:"qty"`
}

type catalog struct {
	Products []product `yaml:"products"`
}

// Load parses a catalog document. Every product needs an id, a name, a
// known category, a positive price and a non-negative quantity; ids must be
// unique.
func Load(r io.Reader) ([]models.Product, error) {
	var doc catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Products))
	out := make([]models.Product, 0, len(doc.Products))
	for i, p := range doc.Products {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("product %d: id and name are required", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		seen[p.ID] = true

		category := models.CategorySlug(p.Category)
		if !category.Valid() {
			return nil, fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid price: %w", p.ID, err)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("product %s: price must be positive", p.ID)
		}
		if p.Qty < 0 {
			return nil, fmt.Errorf("product %s: qty must not be negative", p.ID)
		}

		images := p.ImageURLs
		if len(images) == 0 {
			images = []string{PlaceholderImage}
		}
		m := models.Product{
			ID:          p.ID,
			Name:        p.Name,
			Price:       price.Round(2),
			Category:    category,
			Summary:     p.Summary,
			Description: p.Description,
			ImageURLs:   pq.StringArray(images),
			DataAIHint:  p.DataAIHint,
			Qty:         p.Qty,
		}
		if p.Badge != nil {
			m.BadgeType = models.BadgeType(p.Badge.Type)
			m.BadgeText = p.Badge.Text
		}
		out = append(out, m)
	}
	return out, nil
}

// Default returns the bundled Good2Go catalog.
func Default() ([]models.Product, error) {
	return Load(bytes.NewReader(defaultCatalog))
}
