package utils

import "testing"

func TestRegionFromIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want string
	}{
		{"low octet", "10.0.0.1", "Asia Pacific"},
		{"asia pacific upper bound", "60.255.255.255", "Asia Pacific"},
		{"north america", "64.10.20.30", "North America"},
		{"loopback falls through", "127.0.0.1", "Other"},
		{"europe", "150.1.1.1", "Europe"},
		{"south america", "200.1.1.1", "South America"},
		{"multicast range", "230.1.1.1", "Other"},
		{"unparseable", "not-an-ip", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RegionFromIP(tt.ip); got != tt.want {
				t.Errorf("RegionFromIP(%q): got %q, want %q", tt.ip, got, tt.want)
			}
		})
	}
}

func TestLookupNilResolver(t *testing.T) {
	var g *GeoResolver
	if loc := g.Lookup("8.8.8.8"); loc.Country != "" {
		t.Errorf("nil resolver should return empty location, got %+v", loc)
	}
}
