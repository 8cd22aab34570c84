package analytics

import (
	"testing"
	"time"

	"pnodewatch/models"
)

func TestCalculateNetworkStatsEmpty(t *testing.T) {
	stats := CalculateNetworkStats(nil)

	if stats.TotalNodes != 0 || stats.OnlineNodes != 0 {
		t.Errorf("counts should be zero: %+v", stats)
	}
	if stats.AveragePeerCount != 0 || stats.AverageLatency != 0 {
		t.Errorf("averages should be zero: %+v", stats)
	}
	if stats.VersionDistribution == nil || stats.RegionDistribution == nil {
		t.Error("distributions should be empty maps, not nil")
	}
	if stats.LastUpdated.IsZero() {
		t.Error("LastUpdated should be set")
	}
}

func TestCalculateNetworkStatsCounts(t *testing.T) {
	nodes := []*models.NodeRecord{
		{ID: "a", Status: models.StatusOnline, LastSeen: time.Now()},
		{ID: "b", Status: models.StatusOnline, LastSeen: time.Now()},
		{ID: "c", Status: models.StatusOffline, LastSeen: time.Now()},
		{ID: "d", Status: models.StatusUnknown, LastSeen: time.Now()},
	}

	stats := CalculateNetworkStats(nodes)

	if stats.TotalNodes != 4 || stats.OnlineNodes != 2 || stats.OfflineNodes != 1 || stats.UnknownNodes != 1 {
		t.Errorf("counts wrong: %+v", stats)
	}
}

func TestCalculateNetworkStatsConditionalAverages(t *testing.T) {
	nodes := []*models.NodeRecord{
		{ID: "a", Status: models.StatusOnline, PeerCount: 10, Latency: 100.123},
		{ID: "b", Status: models.StatusOnline, PeerCount: 0, Latency: 0}, // excluded from both
		{ID: "c", Status: models.StatusOnline, PeerCount: 20, Latency: 200.456},
	}

	stats := CalculateNetworkStats(nodes)

	if stats.AveragePeerCount != 15 {
		t.Errorf("avg peers: got %v, want 15", stats.AveragePeerCount)
	}
	// (100.123+200.456)/2 = 150.2895, rounded to 2dp
	if stats.AverageLatency != 150.29 {
		t.Errorf("avg latency: got %v, want 150.29", stats.AverageLatency)
	}
}

func TestCalculateNetworkStatsStorageTotals(t *testing.T) {
	nodes := []*models.NodeRecord{
		{ID: "a", Status: models.StatusOnline, StorageUsed: 100, StorageCapacity: 1000},
		{ID: "b", Status: models.StatusOnline, StorageUsed: 250, StorageCapacity: 500},
	}

	stats := CalculateNetworkStats(nodes)

	if stats.TotalStorageBytes != 1500 || stats.UsedStorageBytes != 350 {
		t.Errorf("storage totals: got %d/%d, want 350/1500", stats.UsedStorageBytes, stats.TotalStorageBytes)
	}
}

func TestCalculateNetworkStatsVersionDistribution(t *testing.T) {
	nodes := []*models.NodeRecord{
		{ID: "a", Status: models.StatusOnline, SoftwareVersion: "3.0.0"},
		{ID: "b", Status: models.StatusOnline, SoftwareVersion: "3.0.12"},
		{ID: "c", Status: models.StatusOnline, SoftwareVersion: "3.1.0"},
		{ID: "d", Status: models.StatusOnline, SoftwareVersion: ""},
		{ID: "e", Status: models.StatusOnline, SoftwareVersion: "dev-build"},
	}

	stats := CalculateNetworkStats(nodes)

	want := map[string]int{
		"3.0.x":     2,
		"3.1.x":     1,
		"unknown":   1,
		"dev-build": 1,
	}
	for bucket, count := range want {
		if stats.VersionDistribution[bucket] != count {
			t.Errorf("bucket %q: got %d, want %d", bucket, stats.VersionDistribution[bucket], count)
		}
	}
	if len(stats.VersionDistribution) != len(want) {
		t.Errorf("distribution: %+v", stats.VersionDistribution)
	}
}

func TestCalculateNetworkStatsRegionDistribution(t *testing.T) {
	nodes := []*models.NodeRecord{
		{ID: "a", Status: models.StatusOnline, Location: &models.Location{Country: "Germany"}},
		{ID: "b", Status: models.StatusOnline, Location: &models.Location{Region: "eu-west"}},
		{ID: "c", Status: models.StatusOnline, IP: "64.10.20.30"}, // octet heuristic
		{ID: "d", Status: models.StatusOnline},
	}

	stats := CalculateNetworkStats(nodes)

	if stats.RegionDistribution["Germany"] != 1 {
		t.Errorf("self-reported country: %+v", stats.RegionDistribution)
	}
	if stats.RegionDistribution["eu-west"] != 1 {
		t.Errorf("self-reported region: %+v", stats.RegionDistribution)
	}
	if stats.RegionDistribution["North America"] != 1 {
		t.Errorf("IP heuristic: %+v", stats.RegionDistribution)
	}
	if stats.RegionDistribution["unknown"] != 1 {
		t.Errorf("no location data: %+v", stats.RegionDistribution)
	}
}

func TestCalculateNetworkStatsValidatorCount(t *testing.T) {
	nodes := []*models.NodeRecord{
		{ID: "a", Status: models.StatusOnline, IsValidator: true},
		{ID: "b", Status: models.StatusOnline},
		{ID: "c", Status: models.StatusOffline, IsValidator: true},
	}

	if got := CalculateNetworkStats(nodes).ValidatorCount; got != 2 {
		t.Errorf("validator count: got %d, want 2", got)
	}
}

func TestVersionBucket(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"", "unknown"},
		{"1.2.3", "1.2.x"},
		{"1.2", "1.2.x"},
		{"10.0.1-beta", "10.0.x"},
		{"nightly", "nightly"},
	}

	for _, tt := range tests {
		if got := versionBucket(tt.version); got != tt.want {
			t.Errorf("versionBucket(%q): got %q, want %q", tt.version, got, tt.want)
		}
	}
}
