package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const defaultAddr = "127.0.0.1:8091"

type Config struct {
	DBPath       string
	RedisAddr    string
	Addr         string
	PressureDrop float64
	AuditBaseURL string
	AuditToken   string
	AuditModel   string
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	defaultDBPath := filepath.Join(cwd, "pipewright.db")

	dbPath := envOrDefault("PIPEWRIGHT_DB_PATH", defaultDBPath)
	redisAddr := os.Getenv("PIPEWRIGHT_REDIS_ADDR")
	addr := addrFromEnv(defaultAddr)
	auditBaseURL := os.Getenv("PIPEWRIGHT_AUDIT_BASE_URL")
	auditToken := envOrDefaultWithFallback([]string{"PIPEWRIGHT_AUDIT_TOKEN", "OPENAI_API_KEY"}, "")
	auditModel := os.Getenv("PIPEWRIGHT_AUDIT_MODEL")

	flagSet := flag.NewFlagSet("pipewright-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagDB := flagSet.String("db", dbPath, "path to SQLite project database")
	flagRedis := flagSet.String("redis", redisAddr, "Redis address for shared project storage (empty for SQLite)")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagDrop := flagSet.Float64("pressure-drop", 0.5, "design pressure drop in inches WC")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	config := Config{
		DBPath:       resolvePath(*flagDB, cwd),
		RedisAddr:    strings.TrimSpace(*flagRedis),
		Addr:         strings.TrimSpace(*flagAddr),
		PressureDrop: *flagDrop,
		AuditBaseURL: strings.TrimSpace(auditBaseURL),
		AuditToken:   strings.TrimSpace(auditToken),
		AuditModel:   strings.TrimSpace(auditModel),
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.PressureDrop <= 0 {
		return Config{}, fmt.Errorf("pressure drop must be positive, got %g", config.PressureDrop)
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrDefaultWithFallback(keys []string, fallback string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("PIPEWRIGHT_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("PIPEWRIGHT_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
