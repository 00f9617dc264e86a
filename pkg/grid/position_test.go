package grid

import (
	"slices"
	"testing"
)

func TestPositions(t *testing.T) {
	p := NewPositions()

	if !p.Discover("a", 2) {
		t.Fatal("Discover(a) should create an entry")
	}
	if p.Discover("a", 5) {
		t.Error("Discover(a) twice should keep the first entry")
	}
	if pos, _ := p.Get("a"); pos.Placed() || pos.Column != 2 {
		t.Errorf("Get(a) = %+v, want unplaced in column 2", pos)
	}

	p.Commit("b", 1, 0)
	p.Commit("a", 3, 2)

	if got := p.IDs(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v, want [a b]", got)
	}
	if pos, _ := p.Get("a"); pos != (Position{Row: 3, Column: 2}) {
		t.Errorf("Get(a) = %+v", pos)
	}
	if _, ok := p.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
	if got := p.At(1, 0); !slices.Equal(got, []string{"b"}) {
		t.Errorf("At(1, 0) = %v, want [b]", got)
	}

	rows, cols := p.Bounds()
	if rows != 4 || cols != 3 {
		t.Errorf("Bounds() = %d, %d, want 4, 3", rows, cols)
	}
}

func TestPositionsBoundsIgnoresPlaceholders(t *testing.T) {
	p := NewPositions()
	p.Discover("far", 9)
	if rows, cols := p.Bounds(); rows != 0 || cols != 0 {
		t.Errorf("Bounds() = %d, %d, want 0, 0", rows, cols)
	}
}

func TestPositionsClone(t *testing.T) {
	p := NewPositions()
	p.Commit("a", 0, 0)
	c := p.Clone()
	c.Commit("a", 5, 5)
	c.Commit("b", 1, 1)

	if pos, _ := p.Get("a"); pos.Row != 0 {
		t.Errorf("original changed: %+v", pos)
	}
	if p.Len() != 1 {
		t.Errorf("original Len() = %d, want 1", p.Len())
	}
}
