package main

import "testing"

func TestParseShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		m, k, n int
		wantErr bool
	}{
		{"256x256x256", 256, 256, 256, false},
		{"64x128x32", 64, 128, 32, false},
		{"64X128X32", 64, 128, 32, false},
		{" 8 x 8 x 8 ", 8, 8, 8, false},
		{"64x128", 0, 0, 0, true},
		{"64x128x32x16", 0, 0, 0, true},
		{"axbxc", 0, 0, 0, true},
		{"0x8x8", 0, 0, 0, true},
		{"-1x8x8", 0, 0, 0, true},
		{"", 0, 0, 0, true},
	}

	for _, tc := range tests {
		m, k, n, err := parseShape(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseShape(%q): expected error, got %dx%dx%d", tc.input, m, k, n)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseShape(%q): %v", tc.input, err)
			continue
		}
		if m != tc.m || k != tc.k || n != tc.n {
			t.Errorf("parseShape(%q): got %dx%dx%d want %dx%dx%d", tc.input, m, k, n, tc.m, tc.k, tc.n)
		}
	}
}
