package config

import (
	"os"
	"testing"
)

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
	fn()
}

func TestLoadRequiresGlobalDatabaseURL(t *testing.T) {
	os.Unsetenv("GLOBAL_DATABASE_URL")
	t.Setenv("GAMESERVER_ENV", "testing")
	if _, err := Load(); err == nil {
		t.Fatal("expected missing GLOBAL_DATABASE_URL to fail")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	withEnv(t, map[string]string{
		"GAMESERVER_ENV":     "testing",
		"GLOBAL_DATABASE_URL": "postgres://localhost/gameserver_global",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.APIPort != 8080 {
			t.Errorf("expected default API port 8080, got %d", cfg.APIPort)
		}
		if cfg.WSOutboundHighWater != 256 {
			t.Errorf("expected default high water mark 256, got %d", cfg.WSOutboundHighWater)
		}
		if !cfg.IsTesting() {
			t.Error("expected testing environment")
		}
	})
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	withEnv(t, map[string]string{
		"GAMESERVER_ENV":      "nonsense",
		"GLOBAL_DATABASE_URL": "postgres://localhost/gameserver_global",
	}, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected invalid environment to fail")
		}
	})
}

func TestValidateRequiresJWTSecretInProduction(t *testing.T) {
	cfg := &Config{Env: Production, APIPort: 8080}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing JWT_SECRET in production to fail validation")
	}
	cfg.JWTSecret = "s3cret"
	cfg.RateLimitEnabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsPortOutOfRange(t *testing.T) {
	cfg := &Config{Env: Development, APIPort: 80}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected privileged port to be rejected")
	}
}

func TestParseEnvironment(t *testing.T) {
	if env, ok := ParseEnvironment("production"); !ok || env != Production {
		t.Errorf("expected production, got %s ok=%v", env, ok)
	}
	if _, ok := ParseEnvironment("bogus"); ok {
		t.Error("expected bogus environment to not parse")
	}
}
