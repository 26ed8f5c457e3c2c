package config

import (
	"testing"
)

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "addr: :8080\n: broken\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected YAML unmarshal error")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.json", `{ "addr": ":8080", "backend_url": }`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected JSON unmarshal error")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.toml", "addr=:8080\nbackend_url\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected TOML unmarshal error")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "command_timeout: soon\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestValidate(t *testing.T) {
	bad := []Config{
		{NotificationsBuffer: -1},
		{MaxBodyBytes: -5},
		{CommandTimeout: Duration{-1}},
		{BackendURL: "ftp://cleep"},
		{PushURL: "http://cleep/push"},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, c)
		}
	}
	if err := (Config{BackendURL: "https://cleep", PushURL: "wss://cleep/push"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
