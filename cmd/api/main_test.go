package main

import "testing"

func TestLooksLikePhone(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"9715550001", true},
		{"+9715550001", true},
		{" 9715550001 ", true},
		{"Sami", false},
		{"sami 971", false},
		{"", false},
		{"+", false},
	}
	for _, tc := range cases {
		if got := looksLikePhone(tc.in); got != tc.want {
			t.Errorf("looksLikePhone(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
