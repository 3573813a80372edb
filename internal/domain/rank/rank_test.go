package rank

import "testing"

func TestCalculate(t *testing.T) {
	tests := []struct {
		score, max int
		want       string
	}{
		{0, 100, Baseline},
		{20, 100, Baseline},
		{21, 100, "Singham"},
		{40, 100, "Singham"},
		{41, 100, "Mass"},
		{60, 100, "Mass"},
		{61, 100, "Pushpa Bahu"},
		{80, 100, "Pushpa Bahu"},
		{81, 100, "Rocky Bhai"},
		{95, 100, "Rocky Bhai"},
		{96, 100, "Bahubali"},
		{5000, 1985, "Bahubali"},
		{10, 0, Baseline},
		{10, -5, Baseline},
	}
	for _, tt := range tests {
		if got := Calculate(tt.score, tt.max); got != tt.want {
			t.Errorf("Calculate(%d, %d) = %q, want %q", tt.score, tt.max, got, tt.want)
		}
	}
}
