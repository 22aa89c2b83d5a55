// Package catalog loads the demo-dataset catalog consumed by the
// presentation layer to populate a selection list.
package catalog

import (
	"os"

	"gopkg.in/yaml.v3"

	"looksee/internal/domain"
)

type catalogFile struct {
	Datasets []domain.Dataset `yaml:"datasets"`
}

// Load reads the demo-dataset catalog file. Entries keep file order. A
// missing catalog is not a startup failure — the profiling core works
// without it — so callers decide how to treat the error.
func Load(path string) ([]domain.Dataset, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, domain.ErrConfig("dataset catalog %q: %v", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, domain.ErrConfig("parse dataset catalog %q: %v", path, err)
	}
	return f.Datasets, nil
}

// Find returns the dataset with the given name.
func Find(datasets []domain.Dataset, name string) (domain.Dataset, error) {
	for _, d := range datasets {
		if d.Name == name {
			return d, nil
		}
	}
	return domain.Dataset{}, domain.ErrNotFound("dataset %q not found in catalog", name)
}
