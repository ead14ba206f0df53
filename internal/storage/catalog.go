package storage

import (
	"context"

	"github.com/bher20/solarquote/pkg/appliances"
)

// Categories groups persisted entries into catalog overlay categories,
// preserving the first-seen order of categories and options.
func Categories(entries []CatalogEntry) []appliances.Category {
	var out []appliances.Category
	idx := make(map[string]int)
	for _, e := range entries {
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, appliances.Category{Key: e.Category, Name: e.CategoryName})
		}
		if out[i].Name == "" && e.CategoryName != "" {
			out[i].Name = e.CategoryName
		}
		out[i].Options = append(out[i].Options, appliances.Option{Label: e.Option, Watts: e.Watts})
	}
	return out
}

// LoadCatalog builds the effective catalog: builtin categories, then the
// given overlays (file, env), then whatever is persisted in st.
func LoadCatalog(ctx context.Context, st Storage, overlays ...[]appliances.Category) (*appliances.Catalog, error) {
	all := append([][]appliances.Category{}, overlays...)
	if st != nil {
		entries, err := st.ListCatalogEntries(ctx)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			all = append(all, Categories(entries))
		}
	}
	return appliances.NewCatalog(appliances.GetAll(), all...), nil
}
