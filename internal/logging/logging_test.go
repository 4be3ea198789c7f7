package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDebug_DisabledInProduction(t *testing.T) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(log.DebugLevel)

	appLogger := &AppLogger{
		logger: logger,
		debug:  false, // Production mode
	}

	appLogger.Debug("debug message that should not appear")

	output := buf.String()
	if strings.Contains(output, "debug message that should not appear") {
		t.Errorf("Expected debug message to be suppressed in production mode, got: %s", output)
	}
}

func TestInfo_AlwaysLogged(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.Info("repository opened", "path", "/tmp/repo")

	output := buf.String()
	if !strings.Contains(output, "repository opened") {
		t.Errorf("Expected log output to contain message, got: %s", output)
	}
	if !strings.Contains(output, "/tmp/repo") {
		t.Errorf("Expected log output to contain key value, got: %s", output)
	}
}

func TestDebugObject(t *testing.T) {
	logger, buf := NewTestLogger()

	type sample struct {
		Name string
		N    int
	}
	logger.DebugObject("sample", sample{Name: "origin", N: 2})

	output := buf.String()
	if !strings.Contains(output, "Object dump") {
		t.Errorf("Expected log output to contain 'Object dump', got: %s", output)
	}
	if !strings.Contains(output, "origin") {
		t.Errorf("Expected log output to contain object content, got: %s", output)
	}
}

func TestLogPerformance_DebugOnly(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogPerformance("clone", time.Now().Add(-50*time.Millisecond))

	output := buf.String()
	if !strings.Contains(output, "Performance") {
		t.Errorf("Expected performance log entry, got: %s", output)
	}
	if !strings.Contains(output, "clone") {
		t.Errorf("Expected operation name in log, got: %s", output)
	}
}

func TestGetDefault_ReturnsSameInstance(t *testing.T) {
	a := GetDefault()
	b := GetDefault()
	if a != b {
		t.Error("GetDefault() should return the same logger instance")
	}
}
