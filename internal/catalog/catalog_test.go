package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"looksee/internal/domain"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
datasets:
  - name: titanic
    location: https://example.com/titanic.csv
  - name: iris
    location: data/iris.csv
`), 0o600))

	datasets, err := Load(path)
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, "titanic", datasets[0].Name)
	assert.Equal(t, "data/iris.csv", datasets[1].Location)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestFind(t *testing.T) {
	datasets := []domain.Dataset{{Name: "iris", Location: "iris.csv"}}

	ds, err := Find(datasets, "iris")
	require.NoError(t, err)
	assert.Equal(t, "iris.csv", ds.Location)

	_, err = Find(datasets, "nope")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
