package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.HTTP.Port != 3001 || c.App.Timezone != "Europe/Madrid" {
		t.Errorf("unexpected app defaults %+v", c.App)
	}
	if c.DB.Host != "localhost" || c.DB.Port != 5433 || c.DB.Username != "postgres" || c.DB.Name != "ecommerce" {
		t.Errorf("unexpected db defaults %+v", c.DB)
	}
	if c.JWT.Secret != "defaultSecretKey" || c.Auth.BcryptCost != 10 {
		t.Errorf("unexpected auth defaults %+v %+v", c.JWT, c.Auth)
	}
	if c.StatsCacheEnabled() {
		t.Error("stats cache should be off without redis address")
	}
}

func TestLoadPlainEnvNames(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "8080")
	t.Setenv("TIMEZONE", "America/New_York")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.HTTP.Port != 8080 || c.App.Timezone != "America/New_York" || c.JWT.Secret != "from-env" {
		t.Errorf("plain env not applied: %+v %+v", c.App, c.JWT)
	}
	if c.DB.Host != "db.internal" || c.DB.Port != 5432 {
		t.Errorf("db env not applied: %+v", c.DB)
	}
	if !c.StatsCacheEnabled() {
		t.Error("stats cache should be on with redis address")
	}
}

func TestPrefixedEnvWins(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "8080")
	t.Setenv("APP_APP_HTTP_PORT", "9090")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.HTTP.Port != 9090 {
		t.Errorf("expected prefixed value, got %d", c.App.HTTP.Port)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
app:
  http:
    port: 4000
db:
  driver: sqlite
  name: accounts.db
redis:
  addr: cache:6379
  stats_ttl_sec: 0
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.HTTP.Port != 4000 || c.DB.Driver != "sqlite" || c.DB.Name != "accounts.db" {
		t.Errorf("file values not applied: %+v %+v", c.App.HTTP, c.DB)
	}
	if c.StatsCacheEnabled() {
		t.Error("ttl 0 disables the stats cache")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"empty secret", map[string]string{"JWT_SECRET": " "}},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
