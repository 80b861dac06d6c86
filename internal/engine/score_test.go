package engine

import "testing"

func TestAward(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		name      string
		remaining int
		want      int
	}{
		{"timeout, no bonus", 0, 10},
		{"at threshold, no bonus", 2, 10},
		{"above threshold, bonus", 3, 12},
		{"full clock", 5, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Award(rules, tc.remaining); got != tc.want {
				t.Fatalf("Award(%d) = %d, want %d", tc.remaining, got, tc.want)
			}
		})
	}
}
