package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"looksee/internal/config"
	"looksee/internal/domain"
	"looksee/internal/engine"
)

const ordersCSV = "id,category,age\n1,a,10\n2,a,20\n3,b,30\n4,b,\n5,c,50\n"

func testConfig() *config.Config {
	return &config.Config{
		Settings: config.Settings{
			DefaultTableName: "dataset",
			SampleRows:       1024,
			RateLimitRPS:     1000,
			RateLimitBurst:   1000,
			SessionTTLMins:   30,
		},
		ReadFunctions: map[string]string{
			"csv":     "read_csv_auto",
			"parquet": "read_parquet",
			"json":    "read_json_auto",
		},
	}
}

func setupServer(t *testing.T, datasets []domain.Dataset) *httptest.Server {
	t.Helper()
	db, err := engine.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()
	sessions := NewSessionManager(db, cfg, log)
	handler := NewHandler(sessions, datasets, log)

	srv := httptest.NewServer(NewRouter(handler, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(ordersCSV), 0o600))
	return path
}

// doJSON performs a request with an optional session id and decodes the
// JSON response body into out.
func doJSON(t *testing.T, srv *httptest.Server, method, path, session string, body, out any) (status int, sessionID string) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode, resp.Header.Get(sessionHeader)
}

func TestIngestAndProfileFlow(t *testing.T) {
	srv := setupServer(t, nil)
	path := writeCSV(t)

	var ingestResp struct {
		OK bool `json:"ok"`
	}
	status, session := doJSON(t, srv, http.MethodPost, "/v1/ingest", "",
		domain.Source{Location: path}, &ingestResp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, session, "server must assign a session id")
	assert.True(t, ingestResp.OK)

	var colsResp struct {
		Columns []string `json:"columns"`
	}
	status, _ = doJSON(t, srv, http.MethodGet, "/v1/columns", session, nil, &colsResp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"id", "category", "age"}, colsResp.Columns)

	var metaResp struct {
		Metadata []domain.ColumnMetadata `json:"metadata"`
	}
	status, _ = doJSON(t, srv, http.MethodPost, "/v1/metadata", session, nil, &metaResp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, metaResp.Metadata, 3)

	// Last computed metadata is served without recompute.
	status, _ = doJSON(t, srv, http.MethodGet, "/v1/metadata", session, nil, &metaResp)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, metaResp.Metadata, 3)

	var summary map[string]any
	status, _ = doJSON(t, srv, http.MethodGet, "/v1/columns/category/summary", session, nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, summary["unique_count"])
	assert.Equal(t, []any{"a", "b", "c"}, summary["distinct_values"])
	assert.NotContains(t, summary, "mean_value")
}

func TestIngest_UnsupportedFormat(t *testing.T) {
	srv := setupServer(t, nil)

	var resp struct {
		OK bool `json:"ok"`
	}
	status, _ := doJSON(t, srv, http.MethodPost, "/v1/ingest", "",
		domain.Source{Location: "data.xlsx"}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, resp.OK)
}

func TestIngest_MissingLocation(t *testing.T) {
	srv := setupServer(t, nil)

	status, _ := doJSON(t, srv, http.MethodPost, "/v1/ingest", "", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSessionIsolation(t *testing.T) {
	srv := setupServer(t, nil)
	path := writeCSV(t)

	var ingestResp struct {
		OK bool `json:"ok"`
	}
	_, sessionA := doJSON(t, srv, http.MethodPost, "/v1/ingest", "",
		domain.Source{Location: path}, &ingestResp)
	require.True(t, ingestResp.OK)

	// A fresh session must not see session A's table.
	var colsResp struct {
		Columns []string `json:"columns"`
	}
	status, sessionB := doJSON(t, srv, http.MethodGet, "/v1/columns", "", nil, &colsResp)
	require.Equal(t, http.StatusOK, status)
	require.NotEqual(t, sessionA, sessionB)
	assert.Empty(t, colsResp.Columns)
}

func TestFindings(t *testing.T) {
	srv := setupServer(t, nil)
	path := writeCSV(t)

	var ingestResp struct {
		OK       bool                       `json:"ok"`
		Findings []domain.ValidationFinding `json:"findings"`
	}
	status, session := doJSON(t, srv, http.MethodPost, "/v1/ingest", "",
		domain.Source{Location: path}, &ingestResp)
	require.Equal(t, http.StatusOK, status)
	require.True(t, ingestResp.OK)
	assert.Empty(t, ingestResp.Findings)

	var findingsResp struct {
		Findings []domain.ValidationFinding `json:"findings"`
	}
	status, _ = doJSON(t, srv, http.MethodGet, "/v1/findings", session, nil, &findingsResp)
	require.Equal(t, http.StatusOK, status)
	assert.NotNil(t, findingsResp.Findings)
	assert.Empty(t, findingsResp.Findings)
}

func TestDatasets(t *testing.T) {
	path := writeCSV(t)
	srv := setupServer(t, []domain.Dataset{{Name: "orders", Location: path}})

	var listResp struct {
		Datasets []domain.Dataset `json:"datasets"`
	}
	status, _ := doJSON(t, srv, http.MethodGet, "/v1/datasets", "", nil, &listResp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, listResp.Datasets, 1)

	var ingestResp struct {
		OK      bool   `json:"ok"`
		Dataset string `json:"dataset"`
	}
	status, _ = doJSON(t, srv, http.MethodPost, "/v1/datasets/orders/ingest", "", nil, &ingestResp)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, ingestResp.OK)
	assert.Equal(t, "orders", ingestResp.Dataset)

	status, _ = doJSON(t, srv, http.MethodPost, "/v1/datasets/nope/ingest", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthz(t *testing.T) {
	srv := setupServer(t, nil)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionTableNames(t *testing.T) {
	db, err := engine.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewSessionManager(db, testConfig(), log)

	id := m.NewID()
	name := m.tableNameFor(id)
	assert.Regexp(t, fmt.Sprintf("^%s_[0-9a-f]{8}$", "dataset"), name)
	assert.Equal(t, name, m.tableNameFor(id), "table name must be stable per id")

	// Caller-supplied ids sharing a long common prefix must still land on
	// distinct tables.
	a := m.tableNameFor("abcdef12-session-one")
	b := m.tableNameFor("abcdef12-session-two")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, name, a)
}
