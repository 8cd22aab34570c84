package utils

import "testing"

func TestCheckVersionStatus(t *testing.T) {
	cfg := &VersionConfig{
		CurrentStable: "1.2.0",
		MinSupported:  "1.1.0",
		Deprecated:    "1.0.0",
	}

	tests := []struct {
		name         string
		version      string
		wantStatus   string
		wantUpgrade  bool
		wantSeverity string
	}{
		{"deprecated", "0.9.0", "deprecated", true, "critical"},
		{"below min supported", "1.0.5", "outdated", true, "warning"},
		{"behind current stable", "1.1.5", "outdated", true, "info"},
		{"current", "1.2.0", "current", false, "none"},
		{"ahead of current", "1.3.0", "current", false, "none"},
		{"v prefix stripped", "v1.2.0", "current", false, "none"},
		{"unparseable", "dev-build", "unknown", false, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, upgrade, severity := CheckVersionStatus(tt.version, cfg)
			if status != tt.wantStatus {
				t.Errorf("status: got %s, want %s", status, tt.wantStatus)
			}
			if upgrade != tt.wantUpgrade {
				t.Errorf("upgrade: got %v, want %v", upgrade, tt.wantUpgrade)
			}
			if severity != tt.wantSeverity {
				t.Errorf("severity: got %s, want %s", severity, tt.wantSeverity)
			}
		})
	}
}

func TestCheckVersionStatusNilConfig(t *testing.T) {
	// Falls back to the default floors
	status, _, _ := CheckVersionStatus(DefaultVersionConfig.CurrentStable, nil)
	if status != "current" {
		t.Errorf("got %s, want current", status)
	}
}

func TestUpgradeMessage(t *testing.T) {
	cfg := &VersionConfig{
		CurrentStable: "1.2.0",
		MinSupported:  "1.1.0",
		Deprecated:    "1.0.0",
	}

	if msg := UpgradeMessage("1.2.0", cfg); msg != "" {
		t.Errorf("current version should need no message, got %q", msg)
	}
	if msg := UpgradeMessage("0.9.0", cfg); msg == "" {
		t.Error("deprecated version should produce a message")
	}
}
