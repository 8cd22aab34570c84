package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
)

type GeoLocation struct {
	Country string
	Region  string
	City    string
	Lat     float64
	Lon     float64
}

// GeoResolver resolves node IPs to locations. Lookup order: in-process
// cache, local GeoIP database, ip-api.com. Every layer is optional; a
// resolver with no database and no network still answers via the octet
// heuristic at the call site.
type GeoResolver struct {
	db         *geoip2.Reader
	httpClient *http.Client
	cache      sync.Map // map[string]GeoLocation
}

// NewGeoResolver never fails: a missing or unreadable database just
// drops the resolver into API-only mode.
func NewGeoResolver(dbPath string) (*GeoResolver, error) {
	var db *geoip2.Reader
	if dbPath != "" {
		var err error
		db, err = geoip2.Open(dbPath)
		if err != nil {
			fmt.Printf("Warning: could not open GeoIP database at %s: %v. Using API fallback only.\n", dbPath, err)
			db = nil
		}
	}

	return &GeoResolver{
		db: db,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}, nil
}

func (g *GeoResolver) Close() {
	if g != nil && g.db != nil {
		g.db.Close()
	}
}

// Lookup is safe on a nil receiver.
func (g *GeoResolver) Lookup(ipStr string) GeoLocation {
	if g == nil {
		return GeoLocation{}
	}

	if val, ok := g.cache.Load(ipStr); ok {
		return val.(GeoLocation)
	}

	var loc GeoLocation
	var found bool

	if g.db != nil {
		if ip := net.ParseIP(ipStr); ip != nil {
			if record, err := g.db.City(ip); err == nil {
				loc.Country = record.Country.Names["en"]
				loc.City = record.City.Names["en"]
				loc.Lat = record.Location.Latitude
				loc.Lon = record.Location.Longitude
				if len(record.Subdivisions) > 0 {
					loc.Region = record.Subdivisions[0].Names["en"]
				}
				found = loc.Country != ""
			}
		}
	}

	if !found {
		if apiLoc, err := g.fetchFromAPI(ipStr); err == nil {
			loc = *apiLoc
			found = true
		}
	}

	if !found {
		// Leave fields empty; callers fall back to RegionFromIP.
		loc = GeoLocation{}
	}

	g.cache.Store(ipStr, loc)
	return loc
}

type ipAPIResponse struct {
	Country string  `json:"country"`
	Region  string  `json:"regionName"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Status  string  `json:"status"`
}

func (g *GeoResolver) fetchFromAPI(ip string) (*GeoLocation, error) {
	url := fmt.Sprintf("http://ip-api.com/json/%s", ip)
	resp, err := g.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error: %d", resp.StatusCode)
	}

	var apiResp ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}
	if apiResp.Status == "fail" {
		return nil, fmt.Errorf("api returned fail status")
	}

	return &GeoLocation{
		Country: apiResp.Country,
		Region:  apiResp.Region,
		City:    apiResp.City,
		Lat:     apiResp.Lat,
		Lon:     apiResp.Lon,
	}, nil
}

// RegionFromIP guesses a coarse region from the first octet of an IPv4
// address. Best-effort only: allocation blocks are far messier than
// this, but it keeps the region distribution populated when no real
// geo data is available. Returns "" when the address doesn't parse.
func RegionFromIP(ipStr string) string {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}
	v4 := ip.To4()
	if v4 == nil {
		return "Other"
	}

	switch octet := int(v4[0]); {
	case octet >= 1 && octet <= 60:
		return "Asia Pacific"
	case octet >= 61 && octet <= 126:
		return "North America"
	case octet >= 128 && octet <= 185:
		return "Europe"
	case octet >= 186 && octet <= 223:
		return "South America"
	default:
		return "Other"
	}
}
