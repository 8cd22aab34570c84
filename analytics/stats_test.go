package analytics

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{42}, 42},
		{"several", []float64{1, 2, 3}, 2},
		{"negative", []float64{-10, 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.xs); !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single sample", []float64{7}, 0},
		{"constant series", []float64{5, 5, 5, 5}, 0},
		// mean 2.5, sum of squared deviations 5, /(n-1)=5/3
		{"sample variance", []float64{1, 2, 3, 4}, math.Sqrt(5.0 / 3.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StdDev(tt.xs); !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZScore(t *testing.T) {
	// mean 2, sample stddev 1
	xs := []float64{1, 2, 3}
	if got := ZScore(10, xs); !almostEqual(got, 8) {
		t.Errorf("got %v, want 8", got)
	}
	if got := ZScore(2, xs); !almostEqual(got, 0) {
		t.Errorf("got %v, want 0", got)
	}

	// Constant series has no deviation signal
	if got := ZScore(1000, []float64{5, 5, 5}); got != 0 {
		t.Errorf("constant series: got %v, want 0", got)
	}

	if got := ZScore(1, nil); got != 0 {
		t.Errorf("empty series: got %v, want 0", got)
	}
}

func TestPercentile(t *testing.T) {
	xs := []float64{10, 20, 30, 40}

	tests := []struct {
		name string
		xs   []float64
		p    float64
		want float64
	}{
		{"empty", nil, 50, 0},
		// ceil(0.5*4)-1 = 1
		{"median nearest rank", xs, 50, 20},
		{"p25", xs, 25, 10},
		{"p100", xs, 100, 40},
		{"p0 clamps to first", xs, 0, 10},
		{"single element", []float64{15}, 99, 15},
		{"unsorted input", []float64{40, 10, 30, 20}, 50, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(tt.xs, tt.p); !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	// Input must not be reordered
	raw := []float64{40, 10, 30, 20}
	Percentile(raw, 50)
	if raw[0] != 40 || raw[1] != 10 {
		t.Errorf("input slice was mutated: %v", raw)
	}
}
