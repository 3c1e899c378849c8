package extract

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		null bool
	}{
		{"1 250,50 €", 1250.50, false},
		{"1500,60", 1500.60, false},
		{"1,250.50", 1250.50, false},
		{"1.250,50", 1250.50, false},
		{"$ 99.00", 99.00, false},
		{"42", 42, false},
		{"1 250,50", 1250.50, false},
		{"1 250,50", 1250.50, false},
		{"-12,5", -12.5, false},
		{"", 0, true},
		{"n/a", 0, true},
		{"total", 0, true},
	}
	for _, tt := range tests {
		got := ParseAmount(tt.in)
		if tt.null {
			if got != nil {
				t.Errorf("ParseAmount(%q) = %v, want nil", tt.in, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParseAmount(%q) = nil, want %v", tt.in, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, *got, tt.want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15/01/2024", "2024-01-15"},
		{"15/01/24", "2024-01-15"},
		{"15-01-2024", "2024-01-15"},
		{"15.01.2024", "2024-01-15"},
		{"1/2/2024", "2024-02-01"},
		{"32/13/2024", ""},
		{"00/01/2024", ""},
		{"15/01/1899", ""},
		{"15/01/2101", ""},
		{"2024-01-15", ""}, // ISO input is not a day-first date
		{"not a date", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	if got := ClampConfidence(1.5); got != 1 {
		t.Errorf("ClampConfidence(1.5) = %v, want 1", got)
	}
	if got := ClampConfidence(-0.1); got != 0 {
		t.Errorf("ClampConfidence(-0.1) = %v, want 0", got)
	}
	if got := ClampConfidence(0.42); got != 0.42 {
		t.Errorf("ClampConfidence(0.42) = %v, want 0.42", got)
	}
}

func TestIsISODate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-15", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"aaaa-bb-cc", false},
		{"2024-13-40", false},
		{"15/01/2024", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsISODate(tt.in); got != tt.want {
			t.Errorf("IsISODate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
