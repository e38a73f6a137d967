package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewNop(t *testing.T) {
	logger, err := New("myq-test", "")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := New("myq-test", path)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("cycle done")
	logger.Sync()

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "cycle done") || !strings.Contains(string(out), "myq-test") {
		t.Errorf("unexpected log contents: %s", out)
	}
}
