package sqllite

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

var portBase int32 = 9018 // starting port number (can be anything safe)

func nextPort() int {
	return int(atomic.AddInt32(&portBase, 1))
}

func runTestWithSetup(t *testing.T, testFunc func(t *testing.T, port int)) {
	port := nextPort()
	filename := filepath.Join(t.TempDir(), fmt.Sprintf("designer-test-%d.db", port))
	t.Setenv("HTTP_ADDR", ":"+strconv.Itoa(port))
	SetupSqlLiteTestInstance(t, filename)
	testFunc(t, port)
}

func SetupSqlLiteTestInstance(t *testing.T, filename string) {
	t.Setenv("GFLOW_DATABASE_TYPE", "SQLLITE")
	t.Setenv("GFLOW_DATABASE_SQLLITE_FILE_NAME", filename)
	t.Setenv("GFLOW_API_KEY_HASH", "")
	t.Setenv("GFLOW_RESET_ON_START", "")
	t.Setenv("GFLOW_STORAGE_KEY", "workflow")
}

// waitForServer polls until the server answers or the deadline passes.
func waitForServer(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/api/workflow")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server at %s did not start", baseURL)
}
