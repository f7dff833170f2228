package selection

import "testing"

func TestPositionOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want int
	}{
		{"same position", Position{1, 3}, Position{1, 3}, 0},
		{"earlier line", Position{0, 9}, Position{1, 0}, -1},
		{"later line", Position{2, 0}, Position{1, 9}, 1},
		{"same line earlier char", Position{1, 2}, Position{1, 3}, -1},
		{"same line later char", Position{1, 4}, Position{1, 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSelectionEmpty(t *testing.T) {
	cur := Cursor(Position{2, 5})
	if !cur.IsEmpty() {
		t.Error("cursor selection should be empty")
	}
	if cur.IsReversed() {
		t.Error("cursor selection should not be reversed")
	}

	sel := New(Position{0, 0}, Position{0, 1})
	if sel.IsEmpty() {
		t.Error("extended selection should not be empty")
	}
}

func TestSelectionDirection(t *testing.T) {
	fwd := New(Position{0, 1}, Position{0, 4})
	if fwd.IsReversed() {
		t.Error("forward selection reported as reversed")
	}
	if fwd.Start() != (Position{0, 1}) || fwd.End() != (Position{0, 4}) {
		t.Errorf("forward Start/End = %v/%v", fwd.Start(), fwd.End())
	}

	rev := fwd.Flip()
	if !rev.IsReversed() {
		t.Error("flipped selection should be reversed")
	}
	if rev.Start() != (Position{0, 1}) || rev.End() != (Position{0, 4}) {
		t.Errorf("reversed Start/End = %v/%v", rev.Start(), rev.End())
	}
	if !rev.SameRange(fwd) {
		t.Error("flip should preserve the covered range")
	}
}

func TestSelectionContains(t *testing.T) {
	sel := New(Position{1, 2}, Position{3, 0})

	tests := []struct {
		pos  Position
		want bool
	}{
		{Position{1, 2}, true},
		{Position{2, 0}, true},
		{Position{3, 0}, false}, // end is exclusive
		{Position{1, 1}, false},
		{Position{3, 1}, false},
	}

	for _, tt := range tests {
		if got := sel.Contains(tt.pos); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}

	if Cursor(Position{1, 1}).Contains(Position{1, 1}) {
		t.Error("empty selection should contain nothing")
	}
}

func TestSelectionCollapseExtend(t *testing.T) {
	sel := New(Position{0, 0}, Position{0, 3})

	collapsed := sel.Collapse()
	if !collapsed.IsEmpty() || collapsed.Active != (Position{0, 3}) {
		t.Errorf("Collapse() = %v, want cursor at (0,3)", collapsed)
	}

	extended := sel.Extend(Position{1, 1})
	if extended.Anchor != (Position{0, 0}) || extended.Active != (Position{1, 1}) {
		t.Errorf("Extend() = %v", extended)
	}
}
