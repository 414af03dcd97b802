package engine

import (
	"errors"
	"testing"
)

func TestParseCoord(t *testing.T) {
	tests := []struct {
		input   string
		size    int
		want    Coord
		wantErr bool
	}{
		{"A1", 10, Coord{Row: 0, Col: 0}, false},
		{"B7", 10, Coord{Row: 6, Col: 1}, false},
		{"b7", 10, Coord{Row: 6, Col: 1}, false},
		{"G7", 10, Coord{Row: 6, Col: 6}, false},
		{"J10", 10, Coord{Row: 9, Col: 9}, false},
		{"E5", 5, Coord{Row: 4, Col: 4}, false},

		{"K1", 10, Coord{}, true},
		{"A11", 10, Coord{}, true},
		{"A0", 10, Coord{}, true},
		{"A01", 10, Coord{}, true},
		{"F1", 5, Coord{}, true},
		{"A", 10, Coord{}, true},
		{"", 10, Coord{}, true},
		{"1A", 10, Coord{}, true},
		{"A1x", 10, Coord{}, true},
		{"A-1", 10, Coord{}, true},
		{" A1", 10, Coord{}, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			got, err := ParseCoord(test.input, test.size)
			if test.wantErr {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Errorf("ParseCoord(%q) expected ErrInvalidCoordinate, got %v", test.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCoord(%q) unexpected error: %v", test.input, err)
			}
			if got != test.want {
				t.Errorf("ParseCoord(%q) = %+v, want %+v", test.input, got, test.want)
			}
		})
	}
}

func TestCoord_String(t *testing.T) {
	for _, s := range []string{"A1", "B7", "J10", "Z26"} {
		c, err := ParseCoord(s, 26)
		if err != nil {
			t.Fatalf("ParseCoord(%q): %v", s, err)
		}
		if c.String() != s {
			t.Errorf("Expected %q, got %q", s, c.String())
		}
	}
}

func TestCoord_Neighbours(t *testing.T) {
	if got := len(Coord{Row: 0, Col: 0}.Neighbours(10)); got != 3 {
		t.Errorf("Corner should have 3 neighbours, got %d", got)
	}
	if got := len(Coord{Row: 0, Col: 5}.Neighbours(10)); got != 5 {
		t.Errorf("Edge should have 5 neighbours, got %d", got)
	}
	if got := len(Coord{Row: 5, Col: 5}.Neighbours(10)); got != 8 {
		t.Errorf("Interior should have 8 neighbours, got %d", got)
	}
}
