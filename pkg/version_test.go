package pkg

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.1", "1.0", 1},
		{"1.10", "1.9", 1},
		{"2.5", "2.5_1", -1},
		{"2.5_2", "2.5_1", 1},
		{"1.0alpha", "1.0", -1},
		{"1.0alpha", "1.0beta", -1},
		{"1.0beta", "1.0rc1", -1},
		{"1.0rc1", "1.0rc2", -1},
		{"1.0rc2", "1.0", -1},
		{"1.0pre1", "1.0", -1},
		{"1.0a", "1.0", 1},
		{"1.0", "1.0.0", 0},
		{"9.0.1_3", "9.0.1_2", 1},
		{"5.9", "5.10", -1},
	}

	for _, tt := range tests {
		got := CompareVersions(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		// Comparison must be antisymmetric.
		if rev := CompareVersions(tt.b, tt.a); rev != -tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.b, tt.a, rev, -tt.want)
		}
	}
}
