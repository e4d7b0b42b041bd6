package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newBufferedLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	return l, &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferedLogger()

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug logged at info level: %q", buf.String())
	}

	l.SetLevel(LevelDebug)
	l.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug not logged at debug level: %q", buf.String())
	}
}

func TestComponentAndFields(t *testing.T) {
	l, buf := newBufferedLogger()
	l.WithComponent("engine").Info("run_start", map[string]interface{}{"agent": "Developer"})

	line := buf.String()
	if !strings.Contains(line, "[engine]") {
		t.Errorf("component missing: %q", line)
	}
	if !strings.Contains(line, "agent=Developer") {
		t.Errorf("field missing: %q", line)
	}
	if !strings.HasPrefix(line, "INFO ") {
		t.Errorf("level prefix missing: %q", line)
	}
}

func TestRunIDTag(t *testing.T) {
	l, buf := newBufferedLogger()
	l.WithRunID("abc123").Info("pipeline_start")
	if !strings.Contains(buf.String(), "run=abc123") {
		t.Errorf("run id missing: %q", buf.String())
	}
}

func TestSecurityWarningMarksField(t *testing.T) {
	l, buf := newBufferedLogger()
	l.SecurityWarning("path traversal blocked", nil)
	line := buf.String()
	if !strings.HasPrefix(line, "WARN ") {
		t.Errorf("not logged as warning: %q", line)
	}
	if !strings.Contains(line, "security=true") {
		t.Errorf("security field missing: %q", line)
	}
}

func TestDomainHelpers(t *testing.T) {
	l, buf := newBufferedLogger()

	l.KeyRotation("Developer", 0, 1, 3, 5, 30)
	if !strings.Contains(buf.String(), "to_key=2/3") {
		t.Errorf("rotation fields missing: %q", buf.String())
	}
	buf.Reset()

	l.PoolExhausted("Developer", 3, 2, 40*time.Second)
	line := buf.String()
	if !strings.Contains(line, "cycle=2") || !strings.Contains(line, "wait=40s") {
		t.Errorf("exhaustion fields missing: %q", line)
	}
	buf.Reset()

	l.PhaseStart("prd", "PRD.md")
	if !strings.Contains(buf.String(), "artifact=PRD.md") {
		t.Errorf("phase fields missing: %q", buf.String())
	}
}
