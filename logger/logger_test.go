package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"error", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		l := New(tt.level, &buf)
		l.Debug("d %d", 1)
		l.Info("i %d", 2)
		l.Error("e %d", 3)

		out := buf.String()
		if got := strings.Contains(out, "DEBUG: "); got != tt.wantDebug {
			t.Errorf("%s: debug logged = %t", tt.level, got)
		}
		if got := strings.Contains(out, "INFO: "); got != tt.wantInfo {
			t.Errorf("%s: info logged = %t", tt.level, got)
		}
		if !strings.Contains(out, "ERROR: ") || !strings.Contains(out, "e 3") {
			t.Errorf("%s: error not logged: %q", tt.level, out)
		}
	}
}
