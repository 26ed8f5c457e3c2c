package httpapi

import (
	"bytes"
	"errors"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	// query param ?log=debug
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	// legacy query param ?log=1
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("legacy query override failed: %v", got)
	}
	// header X-Log-Level
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
}

func TestLogRequest_FallsBackToStdLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	defer log.SetOutput(orig)
	log.SetOutput(&buf)
	saved := zlog
	zlog = nil
	defer func() { zlog = saved }()

	// errors are logged from LevelError
	r := httptest.NewRequest("POST", "/modules/weather/install?log=error", nil)
	logRequest(r, 502, time.Now(), errors.New("command install_module failed"))
	// successes need LevelInfo
	r = httptest.NewRequest("POST", "/modules/weather/install?log=error", nil)
	logRequest(r, 202, time.Now(), nil)

	out := buf.String()
	if !strings.Contains(out, "status=502") {
		t.Fatalf("missing error line: %q", out)
	}
	if strings.Contains(out, "status=202") {
		t.Fatalf("success logged below info level: %q", out)
	}
}
