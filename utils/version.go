package utils

import (
	"strings"

	"github.com/hashicorp/go-version"
)

// VersionConfig holds the network's version floors.
type VersionConfig struct {
	CurrentStable string
	MinSupported  string
	Deprecated    string
}

var DefaultVersionConfig = VersionConfig{
	CurrentStable: "1.2.0",
	MinSupported:  "1.1.0",
	Deprecated:    "1.0.0",
}

// CheckVersionStatus classifies a node's reported software version
// against the configured floors. Unparseable versions are "unknown" and
// never flagged for upgrade.
func CheckVersionStatus(nodeVersion string, config *VersionConfig) (status string, needsUpgrade bool, severity string) {
	if config == nil {
		config = &DefaultVersionConfig
	}

	nodeVersion = strings.TrimPrefix(nodeVersion, "v")

	nodeVer, err := version.NewVersion(nodeVersion)
	if err != nil {
		return "unknown", false, "info"
	}

	current, _ := version.NewVersion(config.CurrentStable)
	minSupported, _ := version.NewVersion(config.MinSupported)
	deprecated, _ := version.NewVersion(config.Deprecated)

	if deprecated != nil && nodeVer.LessThan(deprecated) {
		return "deprecated", true, "critical"
	}
	if minSupported != nil && nodeVer.LessThan(minSupported) {
		return "outdated", true, "warning"
	}
	if current != nil && nodeVer.LessThan(current) {
		return "outdated", true, "info"
	}
	return "current", false, "none"
}

// UpgradeMessage returns a human-readable upgrade hint, or "" when no
// upgrade is needed.
func UpgradeMessage(nodeVersion string, config *VersionConfig) string {
	if config == nil {
		config = &DefaultVersionConfig
	}

	_, needsUpgrade, severity := CheckVersionStatus(nodeVersion, config)
	if !needsUpgrade {
		return ""
	}

	switch severity {
	case "critical":
		return "This version is deprecated and no longer supported. Upgrade to " + config.CurrentStable + " immediately."
	case "warning":
		return "This version is outdated. Please upgrade to " + config.CurrentStable + " soon."
	default:
		return "A newer version " + config.CurrentStable + " is available."
	}
}
