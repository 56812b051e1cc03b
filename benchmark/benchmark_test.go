package benchmark

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	called := false
	stats := Run("sleep", func() {
		called = true
		time.Sleep(5 * time.Millisecond)
	})
	if !called {
		t.Fatal("wrapped function was not called")
	}
	if stats.Label != "sleep" || stats.Elapsed < 5*time.Millisecond || stats.CPUCores < 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	out := buf.String()
	for _, want := range []string{"benchmark=sleep", "msg=running", "msg=finished", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("log output lacks %q:\n%s", want, out)
		}
	}
}
