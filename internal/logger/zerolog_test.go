package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInfoIncludesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.DebugLevel)

	log.Info("Pipeline", "preview generated", map[string]interface{}{
		"mode":  "fast",
		"width": 300,
	})

	out := buf.String()
	for _, want := range []string{
		`"component":"Pipeline"`,
		`"mode":"fast"`,
		`"width":300`,
		`"message":"preview generated"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestErrorAttachesCause(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.DebugLevel)

	log.Error("SessionManager", errors.New("weights truncated"), nil)

	out := buf.String()
	if !strings.Contains(out, `"error":"weights truncated"`) {
		t.Errorf("log output missing error field: %s", out)
	}
	if !strings.Contains(out, `"message":"operation failed"`) {
		t.Errorf("log output missing message: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("Cache", "lookup", nil)
	log.Info("Cache", "stored", nil)

	if buf.Len() != 0 {
		t.Errorf("debug and info should be suppressed at warn level, got: %s", buf.String())
	}

	log.Warning("Cache", "evicting oldest entry", nil)
	if buf.Len() == 0 {
		t.Error("warning should pass at warn level")
	}
}

func TestNewFallsBackOnUnknownLevel(t *testing.T) {
	log := New("json", "nonsense")
	if log == nil {
		t.Fatal("New returned nil")
	}
}
