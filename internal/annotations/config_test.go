package annotations

import (
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.AuditTimezone != "Asia/Kolkata" {
		t.Errorf("AuditTimezone = %q, want Asia/Kolkata", cfg.AuditTimezone)
	}
	if cfg.EscalationProbability != 0.2 {
		t.Errorf("EscalationProbability = %v, want 0.2", cfg.EscalationProbability)
	}
	if cfg.ReviewersGroup != "reviewers" {
		t.Errorf("ReviewersGroup = %q, want reviewers", cfg.ReviewersGroup)
	}
	if cfg.ModelActor != "inhouse-model" {
		t.Errorf("ModelActor = %q, want inhouse-model", cfg.ModelActor)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("TEST_WF_TZ", "UTC")
	t.Setenv("TEST_WF_PROB", "0.5")
	t.Setenv("TEST_WF_GROUP", "qa-team")

	var cfg Config
	err := cfg.Finalize(&Env{
		AuditTimezone:         "TEST_WF_TZ",
		EscalationProbability: "TEST_WF_PROB",
		ReviewersGroup:        "TEST_WF_GROUP",
	})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.AuditTimezone != "UTC" {
		t.Errorf("AuditTimezone = %q, want UTC", cfg.AuditTimezone)
	}
	if cfg.EscalationProbability != 0.5 {
		t.Errorf("EscalationProbability = %v, want 0.5", cfg.EscalationProbability)
	}
	if cfg.ReviewersGroup != "qa-team" {
		t.Errorf("ReviewersGroup = %q, want qa-team", cfg.ReviewersGroup)
	}
	if cfg.ModelActor != "inhouse-model" {
		t.Errorf("ModelActor = %q, want default inhouse-model", cfg.ModelActor)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unknown timezone", cfg: Config{AuditTimezone: "Mars/Olympus"}},
		{name: "probability above one", cfg: Config{EscalationProbability: 1.5}},
		{name: "negative probability", cfg: Config{EscalationProbability: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	cfg.Merge(&Config{EscalationProbability: 0.05, ModelActor: "model-v2"})

	if cfg.EscalationProbability != 0.05 {
		t.Errorf("EscalationProbability = %v, want 0.05", cfg.EscalationProbability)
	}
	if cfg.ModelActor != "model-v2" {
		t.Errorf("ModelActor = %q, want model-v2", cfg.ModelActor)
	}
	if cfg.ReviewersGroup != "reviewers" {
		t.Errorf("ReviewersGroup = %q, want reviewers untouched", cfg.ReviewersGroup)
	}
}
