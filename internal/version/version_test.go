package version

import "testing"

func TestDisplay(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "local-build"},
		{"dev", "local-build"},
		{"none", "local-build"},
		{"unknown", "local-build"},
		{"v1.2.0", "v1.2.0"},
		{"3f2a9c1", "3f2a9c1"},
	}
	for _, tt := range tests {
		if got := Display(tt.in, "local-build"); got != tt.want {
			t.Errorf("Display(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
