package scheduler

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/maktabdl/maktabdl/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	utils.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRunMixedOutcomes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ok/{name}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "content for "+r.PathValue("name"))
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "already.mp4")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0644))

	noop := func(written, total int64) {}
	tasks := []utils.DownloadTask{
		{URL: server.URL + "/ok/a", OutputPath: filepath.Join(dir, "a.mp4"), Label: "a", MaxAttempts: 1, ProgressFunc: noop},
		{URL: server.URL + "/ok/b", OutputPath: filepath.Join(dir, "b.mp4"), Label: "b", MaxAttempts: 1, ProgressFunc: noop},
		{URL: server.URL + "/ok/c", OutputPath: existing, Label: "c", MaxAttempts: 1, SampleLimit: 10, ProgressFunc: noop},
		{URL: server.URL + "/broken", OutputPath: filepath.Join(dir, "d.mp4"), Label: "d", MaxAttempts: 1, ProgressFunc: noop},
	}

	summary := Run(tasks, utils.NewMaktabHTTPClient(utils.HTTPClientConfig{}), 2)
	assert.Equal(t, 2, summary.Downloaded)
	assert.Equal(t, 1, summary.Existing)
	assert.Equal(t, 1, summary.Failed)

	data, err := os.ReadFile(filepath.Join(dir, "a.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "content for a", string(data))
}

func TestRunEmptyTaskList(t *testing.T) {
	summary := Run(nil, utils.NewMaktabHTTPClient(utils.HTTPClientConfig{}), 0)
	assert.Equal(t, Summary{}, summary)
}
