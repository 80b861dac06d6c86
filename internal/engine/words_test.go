package engine

import "testing"

func TestNormalizeWord(t *testing.T) {
	if got := NormalizeWord("  CaT \n"); got != "cat" {
		t.Fatalf("want cat, got %q", got)
	}
}

func TestValidWord(t *testing.T) {
	cases := []struct {
		word string
		want bool
	}{
		{"cat", true},
		{"a", true},
		{"abcdefghijklmnopqrst", true},  // exactly 20
		{"abcdefghijklmnopqrstu", false}, // 21
		{"", false},
		{"dog!", false},
		{"two words", false},
		{"café", false}, // non-ascii
		{"Cat", false},       // validator expects normalized input
		{"damn", false},
	}

	for _, tc := range cases {
		if got := ValidWord(tc.word); got != tc.want {
			t.Errorf("ValidWord(%q) = %v, want %v", tc.word, got, tc.want)
		}
	}
}
