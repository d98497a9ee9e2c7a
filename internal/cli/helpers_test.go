package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aidanlsb/dbref/internal/config"
	"github.com/aidanlsb/dbref/internal/logging"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	os.Stdout = w

	outputCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		var buf bytes.Buffer
		_, copyErr := io.Copy(&buf, r)
		_ = r.Close()
		if copyErr != nil {
			errCh <- copyErr
			return
		}
		outputCh <- buf.String()
	}()

	fn()

	os.Stdout = orig
	_ = w.Close()
	select {
	case err := <-errCh:
		t.Fatalf("io.Copy: %v", err)
		return ""
	case output := <-outputCh:
		return output
	}
}

// useTestStore points the CLI globals at a fresh SQLite store bound to
// database "A" with JSON output, restoring them when the test ends.
func useTestStore(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	prevCfg := cfg
	prevJSON := jsonOutput
	prevDatabase := databaseFlag
	prevLogger := logger
	prevCreateDB := createDB
	t.Cleanup(func() {
		cfg = prevCfg
		jsonOutput = prevJSON
		databaseFlag = prevDatabase
		logger = prevLogger
		createDB = prevCreateDB
	})

	cfg = &config.Config{
		Backend:         config.BackendSQLite,
		DefaultDatabase: "A",
		SQLite:          config.SQLiteConfig{Root: root},
	}
	jsonOutput = true
	databaseFlag = ""
	createDB = ""
	logger = logging.Discard()
	return root
}

type testResponse struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
	Meta     *Meta           `json:"meta"`
}

// run invokes a command's RunE with args and decodes the JSON envelope.
func run(t *testing.T, runE func() error) testResponse {
	t.Helper()
	var runErr error
	out := captureStdout(t, func() {
		runErr = runE()
	})
	if runErr != nil {
		t.Fatalf("RunE returned error: %v", runErr)
	}
	var resp testResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
	}
	return resp
}

func mustSucceed(t *testing.T, resp testResponse) testResponse {
	t.Helper()
	if !resp.OK {
		t.Fatalf("expected success, got error: %+v", resp.Error)
	}
	return resp
}

func mustFail(t *testing.T, resp testResponse, code string) testResponse {
	t.Helper()
	if resp.OK {
		t.Fatalf("expected failure with %s, got success: %s", code, resp.Data)
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Fatalf("expected error code %s, got %+v", code, resp.Error)
	}
	return resp
}
