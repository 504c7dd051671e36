package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(Config{Dir: dir}); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	Warn("cart discarded", "key", "fitfuel.cart")

	if _, err := os.Stat(filepath.Join(dir, "logs", "fitfuel.log")); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}

func TestSetOutputCapturesKeyvals(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	Info("order created", "order_id", "ord_1")
	if !strings.Contains(buf.String(), "order_id=ord_1") {
		t.Fatalf("expected keyvals in output, got %q", buf.String())
	}
}
