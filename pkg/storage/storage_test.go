package storage

import (
	"errors"
	"testing"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := Config{ConnectionString: "UseDevelopmentStorage=true"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.OpTimeout != "30s" {
		t.Errorf("OpTimeout = %q, want 30s", cfg.OpTimeout)
	}

	want := Containers{
		Documents: "documents",
		PreLabels: "pre-labels",
		Labelling: "labelling",
		Labels:    "labels",
	}
	if cfg.Containers != want {
		t.Errorf("Containers = %+v, want %+v", cfg.Containers, want)
	}
}

func TestConfigFinalizeRequiresConnectionString(t *testing.T) {
	cfg := Config{}
	if err := cfg.Finalize(nil); err == nil {
		t.Fatal("expected error for missing connection string")
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_STORAGE_CONN", "UseDevelopmentStorage=true")
	t.Setenv("TEST_STORAGE_TIMEOUT", "5s")

	cfg := Config{}
	env := &Env{ConnectionString: "TEST_STORAGE_CONN", OpTimeout: "TEST_STORAGE_TIMEOUT"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.OpTimeout != "5s" {
		t.Errorf("OpTimeout = %q, want 5s", cfg.OpTimeout)
	}
}

func TestConfigMerge(t *testing.T) {
	base := Config{ConnectionString: "base", OpTimeout: "30s"}
	base.Containers = Containers{Documents: "documents"}

	base.Merge(&Config{
		OpTimeout:  "10s",
		Containers: Containers{Documents: "docs-eu"},
	})

	if base.ConnectionString != "base" {
		t.Error("unset overlay field overwrote base")
	}
	if base.OpTimeout != "10s" || base.Containers.Documents != "docs-eu" {
		t.Errorf("merge result = %+v", base)
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name      string
		container string
		key       string
		want      error
	}{
		{"valid", "documents", "a.pdf", nil},
		{"empty container", "", "a.pdf", ErrEmptyContainer},
		{"empty key", "documents", "", ErrEmptyKey},
		{"traversal key", "documents", "../secrets", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAddress(tt.container, tt.key)
			if !errors.Is(err, tt.want) {
				t.Errorf("validateAddress(%q, %q) = %v, want %v", tt.container, tt.key, err, tt.want)
			}
		})
	}
}
