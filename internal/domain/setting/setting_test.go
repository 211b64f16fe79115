package setting

import "testing"

func TestParseBool(t *testing.T) {
	tests := []struct {
		name  string
		value string
		found bool
		want  bool
	}{
		{"missing defaults on", "", false, true},
		{"true", "true", true, true},
		{"false", "false", true, false},
		{"garbage defaults on", "maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseBool(tt.value, tt.found); got != tt.want {
				t.Errorf("ParseBool(%q, %v) = %v, want %v", tt.value, tt.found, got, tt.want)
			}
		})
	}
}
