package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/footprint/internal/daemon"
	"github.com/theirongolddev/footprint/internal/model"

	"github.com/charmbracelet/x/ansi"
)

func TestDaemonFilesClaimRelease(t *testing.T) {
	files := daemonFiles{pidPath: filepath.Join(t.TempDir(), "run", "footprintd.pid")}

	if pid, alive := files.Running(); pid != 0 || alive {
		t.Fatalf("Running before claim = %d, %v", pid, alive)
	}
	if err := files.Claim(os.Getpid()); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if pid, alive := files.Running(); pid != os.Getpid() || !alive {
		t.Fatalf("Running = %d, %v; want our pid alive", pid, alive)
	}
	if err := files.Claim(os.Getpid()); err == nil {
		t.Fatal("second Claim succeeded while the owner is alive")
	}

	st := daemonRuntimeState{PID: os.Getpid(), Addr: "127.0.0.1:9999", DataDir: "/data"}
	if err := files.SaveState(st); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	got, err := files.State()
	if err != nil || got.Addr != st.Addr || got.DataDir != st.DataDir {
		t.Fatalf("State = %+v, %v; want %+v", got, err, st)
	}

	files.Release()
	if _, err := os.Stat(files.pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file still present after Release: %v", err)
	}
	if _, err := files.State(); err == nil {
		t.Fatal("state sidecar still present after Release")
	}
}

func TestDaemonFilesStalePID(t *testing.T) {
	files := daemonFiles{pidPath: filepath.Join(t.TempDir(), "footprintd.pid")}
	if err := os.WriteFile(files.pidPath, []byte("999999999\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if pid, alive := files.Running(); pid != 999999999 || alive {
		t.Fatalf("Running = %d, %v; want stale pid", pid, alive)
	}
	if err := files.EnsureFree(); err != nil {
		t.Fatalf("EnsureFree with stale pid: %v", err)
	}
	if _, err := os.Stat(files.pidPath); !os.IsNotExist(err) {
		t.Fatal("stale pid file was not cleared")
	}
}

func TestDaemonFilesInvalidPID(t *testing.T) {
	files := daemonFiles{pidPath: filepath.Join(t.TempDir(), "footprintd.pid")}
	if err := os.WriteFile(files.pidPath, []byte("not-a-pid"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := files.PID(); err == nil {
		t.Fatal("PID accepted garbage")
	}
	if err := files.Claim(1); err == nil {
		t.Fatal("Claim should surface an unreadable pid file")
	}
}

func TestChildArgs(t *testing.T) {
	got := childArgs([]string{"daemon", "--detach", "--addr", "x", "--detach=true"})
	want := []string{"daemon", "--addr", "x", "--child"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("childArgs = %v, want %v", got, want)
	}
}

func TestFetchAndRenderDaemonStatus(t *testing.T) {
	status := daemon.Status{
		LastPollAt:     time.Now().Add(-time.Minute),
		PollCount:      12,
		RecomputeCount: 3,
		HasState:       true,
		Summary:        model.Snapshot{StatementID: "stmt-7", Actual: 40, Allotted: 30, AfterActual: 31, OffsetKg: 1},
		LastError:      "parse failed",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/status" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(status)
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	got, err := fetchDaemonStatus(context.Background(), addr)
	if err != nil {
		t.Fatalf("fetchDaemonStatus: %v", err)
	}
	if got.PollCount != 12 || got.Summary.StatementID != "stmt-7" {
		t.Fatalf("status = %+v", got)
	}

	out := ansi.Strip(renderDaemonStatus(got))
	for _, want := range []string{"stmt-7", "Recomputes", "parse failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered status missing %q:\n%s", want, out)
		}
	}
}

func TestFetchDaemonStatus_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := fetchDaemonStatus(context.Background(), strings.TrimPrefix(srv.URL, "http://"))
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("err = %v, want HTTP 503", err)
	}
}
