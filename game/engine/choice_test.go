package engine

import (
	"errors"
	"testing"
)

func TestParseChoice(t *testing.T) {
	for _, s := range []string{"rock", "Paper", " SCISSORS "} {
		if _, err := ParseChoice(s); err != nil {
			t.Errorf("ParseChoice(%q) unexpected error: %v", s, err)
		}
	}
	for _, s := range []string{"", "lizard", "rocks"} {
		if _, err := ParseChoice(s); !errors.Is(err, ErrInvalidChoice) {
			t.Errorf("ParseChoice(%q) expected ErrInvalidChoice, got %v", s, err)
		}
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		a, b Choice
		want int
	}{
		{Rock, Scissors, 1},
		{Scissors, Paper, 1},
		{Paper, Rock, 1},
		{Scissors, Rock, -1},
		{Paper, Scissors, -1},
		{Rock, Paper, -1},
		{Rock, Rock, 0},
		{Paper, Paper, 0},
		{Scissors, Scissors, 0},
	}

	for _, test := range tests {
		t.Run(string(test.a)+"_vs_"+string(test.b), func(t *testing.T) {
			if got := Decide(test.a, test.b); got != test.want {
				t.Errorf("Decide(%s, %s) = %d, want %d", test.a, test.b, got, test.want)
			}
			// Decide must be antisymmetric
			if got := Decide(test.b, test.a); got != -test.want {
				t.Errorf("Decide(%s, %s) = %d, want %d", test.b, test.a, got, -test.want)
			}
		})
	}
}
