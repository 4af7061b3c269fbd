package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Addr != defaultAddr {
		t.Errorf("Addr = %q, want %q", config.Addr, defaultAddr)
	}
	if !strings.HasSuffix(config.DBPath, "pipewright.db") {
		t.Errorf("DBPath = %q, want a pipewright.db default", config.DBPath)
	}
	if config.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", config.RedisAddr)
	}
	if config.PressureDrop != 0.5 {
		t.Errorf("PressureDrop = %g, want 0.5", config.PressureDrop)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PIPEWRIGHT_DB_PATH", "/tmp/custom.db")
	t.Setenv("PIPEWRIGHT_ADDR", "0.0.0.0:9999")
	t.Setenv("PIPEWRIGHT_REDIS_ADDR", "127.0.0.1:6379")

	config, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q, want /tmp/custom.db", config.DBPath)
	}
	if config.Addr != "0.0.0.0:9999" {
		t.Errorf("Addr = %q, want 0.0.0.0:9999", config.Addr)
	}
	if config.RedisAddr != "127.0.0.1:6379" {
		t.Errorf("RedisAddr = %q, want 127.0.0.1:6379", config.RedisAddr)
	}
}

func TestLoadConfigPortEnv(t *testing.T) {
	t.Setenv("PIPEWRIGHT_PORT", "7777")

	config, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Addr != "127.0.0.1:7777" {
		t.Errorf("Addr = %q, want 127.0.0.1:7777", config.Addr)
	}
}

func TestLoadConfigFlagsBeatEnv(t *testing.T) {
	t.Setenv("PIPEWRIGHT_ADDR", "0.0.0.0:9999")

	config, err := LoadConfig([]string{"-addr", "127.0.0.1:8100", "-db", "relative.db"})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Addr != "127.0.0.1:8100" {
		t.Errorf("Addr = %q, want flag value", config.Addr)
	}
	if !filepath.IsAbs(config.DBPath) {
		t.Errorf("DBPath = %q, want resolved absolute path", config.DBPath)
	}
}

func TestLoadConfigRejectsBadPressureDrop(t *testing.T) {
	if _, err := LoadConfig([]string{"-pressure-drop", "0"}); err == nil {
		t.Error("expected an error for a zero pressure drop")
	}
}

func TestLoadConfigRejectsEmptyAddr(t *testing.T) {
	if _, err := LoadConfig([]string{"-addr", "  "}); err == nil {
		t.Error("expected an error for an empty addr")
	}
}

func TestLoadConfigAuditToken(t *testing.T) {
	t.Setenv("PIPEWRIGHT_AUDIT_TOKEN", "tok-1")
	t.Setenv("PIPEWRIGHT_AUDIT_MODEL", "gpt-4o")

	config, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.AuditToken != "tok-1" {
		t.Errorf("AuditToken = %q, want tok-1", config.AuditToken)
	}
	if config.AuditModel != "gpt-4o" {
		t.Errorf("AuditModel = %q, want gpt-4o", config.AuditModel)
	}
}

func TestLoadConfigOpenAIKeyFallback(t *testing.T) {
	t.Setenv("PIPEWRIGHT_AUDIT_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	config, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.AuditToken != "sk-fallback" {
		t.Errorf("AuditToken = %q, want sk-fallback", config.AuditToken)
	}
}
