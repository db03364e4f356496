package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// go test -v --run TestLoadDefaults
func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Cache.TTL != time.Minute {
		t.Errorf("expected default cache ttl 1m, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Cache.Backend)
	}
	if cfg.CoinGecko.BaseURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("unexpected coingecko base url: %s", cfg.CoinGecko.BaseURL)
	}
	if cfg.Log.Environment != "dev" {
		t.Errorf("expected log environment to follow top-level environment, got %q", cfg.Log.Environment)
	}
}

// go test -v --run TestLoadFileAndEnv
func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "cache:\n  ttl: 30s\n  single_flight: true\nserver:\n  addr: \":9000\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", dir)
	t.Setenv("SERVER_ADDR", ":9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Cache.TTL != 30*time.Second || !cfg.Cache.SingleFlight {
		t.Errorf("file values not applied: %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("expected env override :9100, got %s", cfg.Server.Addr)
	}
}

type fakeParams map[string]string

func (f fakeParams) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	v, ok := f[aws.ToString(in.Name)]
	if !ok {
		return nil, errors.New("parameter not found")
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(v)}}, nil
}

// go test -v --run TestPostgresDSN
func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:      "localhost",
		Port:      5432,
		User:      "postgres",
		Password:  "yourpw",
		DBName:    "cryptoconvert",
		SSLMode:   "disable",
		TimeZone:  "UTC",
		SSMPrefix: "/cc/",
	}

	dev := cfg.DSN("dev")
	want := "host=localhost port=5432 user=postgres password=yourpw dbname=cryptoconvert sslmode=disable TimeZone=UTC"
	if dev != want {
		t.Errorf("unexpected dev dsn:\n got %s\nwant %s", dev, want)
	}

	prod := cfg.dsnWith("prod", fakeParams{
		"/cc/HOST":     "db.internal",
		"/cc/PASSWORD": "s3cret",
	})
	if !strings.Contains(prod, "host=db.internal") || !strings.Contains(prod, "password=s3cret") {
		t.Errorf("prod dsn did not use parameter store values: %s", prod)
	}
	if !strings.Contains(prod, "user=postgres") {
		t.Errorf("missing parameter should keep configured user: %s", prod)
	}
}
