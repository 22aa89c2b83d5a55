package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"looksee/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "looksee.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "settings:\n  default_table_name: mydata\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mydata", cfg.Settings.DefaultTableName)
	assert.Equal(t, "looksee.log", cfg.Settings.LogFile)
	assert.Equal(t, 500, cfg.Settings.LogMaxSizeMB)
	assert.Equal(t, 20480, cfg.Settings.SampleRows)

	// Default dispatch table covers the four supported formats.
	for _, ext := range []string{"csv", "tsv", "parquet", "json"} {
		fn, ok := cfg.ReadFunction(ext)
		assert.True(t, ok, "missing read function for %s", ext)
		assert.NotEmpty(t, fn)
	}
	_, ok := cfg.ReadFunction("xlsx")
	assert.False(t, ok)
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "settings: [not a map\n")

	_, err := Load(path)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_UnknownKeysRejected(t *testing.T) {
	path := writeConfig(t, "settngs:\n  default_table_name: x\n")

	_, err := Load(path)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ReadFunctionIdentifierValidated(t *testing.T) {
	path := writeConfig(t, "read_functions:\n  csv: \"read_csv('evil'); DROP TABLE x; --\"\n")

	_, err := Load(path)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ReadOptionsRequireMatchingFunction(t *testing.T) {
	path := writeConfig(t, `
read_functions:
  csv: read_csv_auto
read_options:
  xlsx: "header=true"
`)

	_, err := Load(path)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ReadOptionsValidated(t *testing.T) {
	ok := []string{
		"delim='\\t'",
		"header=true",
		"sample_size=100, header=true",
	}
	for _, opt := range ok {
		path := writeConfig(t, "read_functions:\n  csv: read_csv_auto\nread_options:\n  csv: \""+opt+"\"\n")
		_, err := Load(path)
		assert.NoError(t, err, "option %q must be accepted", opt)
	}

	bad := []string{
		"delim='x'); DROP TABLE dataset; --",
		"header",
		"header=true; install httpfs",
	}
	for _, opt := range bad {
		path := writeConfig(t, "read_functions:\n  csv: read_csv_auto\nread_options:\n  csv: \""+opt+"\"\n")
		_, err := Load(path)
		var cfgErr *domain.ConfigError
		assert.ErrorAs(t, err, &cfgErr, "option %q must be rejected", opt)
	}
}

func TestReadFunction_CaseInsensitive(t *testing.T) {
	path := writeConfig(t, "read_functions:\n  csv: read_csv_auto\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	fn, ok := cfg.ReadFunction("CSV")
	assert.True(t, ok)
	assert.Equal(t, "read_csv_auto", fn)
}
