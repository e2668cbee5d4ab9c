package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

func TestSetupClassPreparesPlan(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/classes/add":
			w.WriteHeader(http.StatusConflict)
		case "/roster/set":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.EqualValues(t, loadN, body["n"])
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	require.NoError(t, setupClass(srv.URL, "load-class"))
	require.Equal(t, []string{"/classes/add", "/roster/set", "/plan/prepare"}, paths)
}

func TestSetupClassFailsOnUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	require.Error(t, setupClass(srv.URL, "load-class"))
}

func TestDrawTargeterAlternatesRequests(t *testing.T) {
	targeter := newDrawTargeter("http://svc", "1 A")

	var methods []string
	for range 4 {
		var target vegeta.Target
		require.NoError(t, targeter(&target))
		methods = append(methods, target.Method)
		if target.Method == http.MethodPost {
			require.Equal(t, "http://svc/draw/pick", target.URL)
			require.Contains(t, string(target.Body), `"absent_names"`)
		} else {
			require.Equal(t, "http://svc/roster/get?class_name=1+A", target.URL)
		}
	}
	require.Equal(t, []string{http.MethodPost, http.MethodPost, http.MethodPost, http.MethodGet}, methods)
}

func TestRunLoadTestCreatesResultsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tmpFile := filepath.Join(t.TempDir(), "results.bin")
	prev := resultsFile
	resultsFile = tmpFile
	defer func() { resultsFile = prev }()

	require.NoError(t, runLoadTest(srv.URL, 1, 20*time.Millisecond, "load-class"))

	info, err := os.Stat(tmpFile)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRenderReportReadsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "results.bin")
	file, err := os.Create(tmpFile)
	require.NoError(t, err)
	enc := vegeta.NewEncoder(file)
	now := time.Now()
	require.NoError(t, enc.Encode(&vegeta.Result{Code: http.StatusOK, Timestamp: now, Latency: time.Millisecond}))
	require.NoError(t, enc.Encode(&vegeta.Result{Code: http.StatusConflict, Timestamp: now.Add(time.Millisecond), Latency: 2 * time.Millisecond}))
	require.NoError(t, file.Close())

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, tmpFile))
	require.Contains(t, buf.String(), "Requests      [total")
}

func TestWritePlotInstructions(t *testing.T) {
	var buf bytes.Buffer
	prev := resultsFile
	resultsFile = "custom.bin"
	defer func() { resultsFile = prev }()

	writePlotInstructions(&buf)
	require.Contains(t, buf.String(), "vegeta plot custom.bin")
}
