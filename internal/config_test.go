package internal

import (
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Vault.Path != "." {
		t.Errorf("vault path = %q, want current directory", cfg.Vault.Path)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestTransportConfig(t *testing.T) {
	cfg := TransportConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty transport should default: %v", err)
	}
	if cfg.Mode != TransportStdio {
		t.Errorf("mode = %q, want stdio", cfg.Mode)
	}
	bad := TransportConfig{Mode: "carrier-pigeon"}
	if err := bad.Validate(); err == nil {
		t.Error("unknown transport should fail")
	}
}

func TestHTTPPortCheckedOnlyForHTTP(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("stdio mode should ignore the HTTP port: %v", err)
	}
	cfg.Transport.Mode = TransportHTTP
	if err := cfg.Validate(); err == nil {
		t.Error("http mode with port 0 should fail")
	}
}

func TestVaultPathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty vault path should fail validation")
	}
}
