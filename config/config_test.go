package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// go test -v --run TestLoadFrom
func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
binance:
  rest:
    base_url: https://testnet.binance.vision
    timeout: 3s
collector:
  pairs:
    - base: BTC
      quote: USDT
  interval: 1m
postgres:
  host: db
  user: collector
  dbname: marketdata
  tables:
    market_data: candles
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Binance.REST.BaseURL != "https://testnet.binance.vision" || cfg.Binance.REST.Timeout != 3*time.Second {
		t.Errorf("unexpected rest config: %+v", cfg.Binance.REST)
	}
	if len(cfg.Collector.Pairs) != 1 || cfg.Collector.Pairs[0].Base != "BTC" || cfg.Collector.Pairs[0].Quote != "USDT" {
		t.Errorf("unexpected pairs: %+v", cfg.Collector.Pairs)
	}
	if cfg.Collector.Interval != "1m" || cfg.Collector.MaxConcurrency != 5 {
		t.Errorf("unexpected collector config: %+v", cfg.Collector)
	}
	if cfg.Postgres.Tables.MarketData != "candles" || cfg.Postgres.Tables.Pairs != "traded_pairs" {
		t.Errorf("unexpected tables: %+v", cfg.Postgres.Tables)
	}
	if cfg.Postgres.Port != 5432 || cfg.Log.Level != "info" {
		t.Errorf("defaults not applied: port=%d level=%s", cfg.Postgres.Port, cfg.Log.Level)
	}
}

func TestLoadFromEnvOverride(t *testing.T) {
	path := writeConfig(t, "postgres:\n  host: db\n")
	t.Setenv("POSTGRES_HOST", "override-host")
	t.Setenv("BINANCE_CREDENTIALS_PUBLIC_KEY", "env-pub")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Postgres.Host != "override-host" {
		t.Errorf("host = %s, want override-host", cfg.Postgres.Host)
	}
	if cfg.Binance.Credentials.PublicKey != "env-pub" {
		t.Errorf("public key = %q, want env-pub", cfg.Binance.Credentials.PublicKey)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "marketdata", SSLMode: "disable", TimeZone: "UTC"}
	want := "host=localhost port=5432 user=u password=p dbname=marketdata sslmode=disable TimeZone=UTC"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %s", got)
	}
	if got := cfg.DSNFor("postgres"); got != "host=localhost port=5432 user=u password=p dbname=postgres sslmode=disable TimeZone=UTC" {
		t.Fatalf("DSNFor() = %s", got)
	}
}

type mapSource map[string]string

func (m mapSource) Get(_ context.Context, name string) (string, error) {
	v, ok := m[name]
	if !ok {
		return "", errors.New("missing " + name)
	}
	return v, nil
}

func TestResolveSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Postgres.Host = "inline-host"
	cfg.Postgres.PasswordParam = "/db/password"
	cfg.Binance.Credentials.SecretKeyParam = "/binance/secret"

	err := cfg.ResolveSecrets(context.Background(), mapSource{"/db/password": "pw", "/binance/secret": "s3cr3t"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Postgres.Password != "pw" || cfg.Binance.Credentials.SecretKey != "s3cr3t" {
		t.Fatalf("secrets not resolved: %+v %+v", cfg.Postgres, cfg.Binance.Credentials)
	}
	if cfg.Postgres.Host != "inline-host" {
		t.Fatalf("host without param changed: %s", cfg.Postgres.Host)
	}

	cfg.Postgres.UserParam = "/db/unknown"
	if err := cfg.ResolveSecrets(context.Background(), mapSource{}); err == nil {
		t.Fatal("expected error for unresolvable parameter")
	}
}

type fakeSSM struct {
	values map[string]string
	calls  []string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls = append(f.calls, *in.Name)
	if in.WithDecryption == nil || !*in.WithDecryption {
		return nil, errors.New("decryption not requested")
	}
	v, ok := f.values[*in.Name]
	if !ok {
		return nil, errors.New("ParameterNotFound")
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: &v}}, nil
}

func TestParameterStoreGet(t *testing.T) {
	fake := &fakeSSM{values: map[string]string{"/db/host": "rds.internal"}}
	store := &ParameterStore{client: fake}

	v, err := store.Get(context.Background(), "/db/host")
	if err != nil || v != "rds.internal" {
		t.Fatalf("Get() = %q, %v", v, err)
	}
	if _, err := store.Get(context.Background(), "/db/missing"); err == nil {
		t.Fatal("expected error for missing parameter")
	}
	if len(fake.calls) != 2 {
		t.Fatalf("calls = %v", fake.calls)
	}
}
