package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/screenrec/pkg/ports"
)

func TestConsoleLevelFiltering(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := NewWriter(ports.LevelInfo, &stdout, &stderr)

	log.Debug("hidden %d", 1)
	log.Info("frames %d", 2)
	log.Warn("slow %s", "capture")
	log.Error("failed")

	if strings.Contains(stdout.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(stdout.String(), "frames 2") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "slow capture") || !strings.Contains(stderr.String(), "failed") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestConsoleComponentPrefix(t *testing.T) {
	var stdout bytes.Buffer
	log := NewWriter(ports.LevelDebug, &stdout, &stdout).WithComponent("encode")

	log.Debug("packet %d", 7)

	if got := stdout.String(); got != "[encode] packet 7\n" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleQuiet(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := NewWriter(ports.LevelQuiet, &stdout, &stderr)

	log.Error("nothing")

	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Error("quiet logger should not write")
	}
}
