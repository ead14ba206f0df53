package appliances

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogEnv holds a JSON array of categories that overlays the builtin set.
const CatalogEnv = "SOLARQUOTE_CATALOG_JSON"

// Catalog is the immutable category -> option -> wattage table. Build it once
// at startup and share it; it is never mutated afterwards.
type Catalog struct {
	order []string
	cats  map[string]Category
	watts map[string]map[string]int
}

// NewCatalog builds a Catalog from base and applies each overlay in order.
// An overlay category with a known key replaces matching option labels and
// appends new ones; an unknown key adds the category.
func NewCatalog(base []Category, overlays ...[]Category) *Catalog {
	c := &Catalog{
		cats:  make(map[string]Category),
		watts: make(map[string]map[string]int),
	}
	for _, cat := range base {
		c.merge(cat)
	}
	for _, ov := range overlays {
		for _, cat := range ov {
			c.merge(cat)
		}
	}
	return c
}

// Default returns a Catalog of the registered builtin categories.
func Default() *Catalog {
	return NewCatalog(GetAll())
}

func (c *Catalog) merge(cat Category) {
	if cat.validate() != nil {
		return
	}
	cur, ok := c.cats[cat.Key]
	if !ok {
		c.order = append(c.order, cat.Key)
		cur = Category{Key: cat.Key, Name: cat.Name}
		c.watts[cat.Key] = map[string]int{Placeholder: 0}
		cur.Options = append(cur.Options, Option{Label: Placeholder})
	}
	if cat.Name != "" {
		cur.Name = cat.Name
	}
	for _, o := range cat.Options {
		if o.Label == Placeholder {
			continue
		}
		if _, exists := c.watts[cat.Key][o.Label]; exists {
			for i := range cur.Options {
				if cur.Options[i].Label == o.Label {
					cur.Options[i].Watts = o.Watts
				}
			}
		} else {
			cur.Options = append(cur.Options, o)
		}
		c.watts[cat.Key][o.Label] = o.Watts
	}
	c.cats[cat.Key] = cur
}

// Lookup resolves the unit wattage for an option. Unknown categories,
// unknown options and the placeholder all resolve to 0.
func (c *Catalog) Lookup(category, option string) int {
	if c == nil {
		return 0
	}
	opts, ok := c.watts[category]
	if !ok {
		return 0
	}
	return opts[option]
}

// Has reports whether option is a known label of category.
func (c *Catalog) Has(category, option string) bool {
	if c == nil {
		return false
	}
	_, ok := c.watts[category][option]
	return ok
}

// Categories returns a copy of the catalog in insertion order.
func (c *Catalog) Categories() []Category {
	if c == nil {
		return nil
	}
	out := make([]Category, 0, len(c.order))
	for _, k := range c.order {
		cat := c.cats[k]
		opts := make([]Option, len(cat.Options))
		copy(opts, cat.Options)
		cat.Options = opts
		out = append(out, cat)
	}
	return out
}

// LoadFile reads categories from a YAML (or JSON, which is valid YAML) file.
func LoadFile(path string) ([]Category, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	for _, cat := range doc.Categories {
		if err := cat.validate(); err != nil {
			return nil, fmt.Errorf("catalog file %s: category %q: %w", path, cat.Key, err)
		}
	}
	return doc.Categories, nil
}

// FromEnv returns the overlay in CatalogEnv. An unset or invalid value yields
// nil so callers fall back to the builtin catalog.
func FromEnv() []Category {
	raw := os.Getenv(CatalogEnv)
	if raw == "" {
		return nil
	}
	var out []Category
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}
