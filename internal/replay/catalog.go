package replay

import (
	"log/slog"
	"path"
)

// Catalog lists the replayable datasets of a Store, grouped by category.
// Nothing is cached; every List rescans storage.
type Catalog struct {
	store Store
	log   *slog.Logger
}

// NewCatalog returns a Catalog over store.
func NewCatalog(store Store, log *slog.Logger) *Catalog {
	return &Catalog{store: store, log: log}
}

// List returns one entry per category that holds at least one dataset file.
// When the root cannot be read it returns an empty slice and the error.
func (c *Catalog) List() ([]CatalogEntry, error) {
	categories, err := c.store.ListCategories()
	if err != nil {
		return []CatalogEntry{}, err
	}

	entries := make([]CatalogEntry, 0, len(categories))
	for _, category := range categories {
		files, err := c.store.ListFiles(category)
		if err != nil {
			c.log.Warn("skipping unreadable category",
				slog.String("category", category),
				slog.String("error", err.Error()))
			continue
		}
		if len(files) == 0 {
			continue
		}

		entry := CatalogEntry{Category: category, Files: make([]CatalogFile, 0, len(files))}
		for _, f := range files {
			entry.Files = append(entry.Files, CatalogFile{
				Name: DisplayName(f),
				Path: path.Join(category, f),
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
