package engine

import "testing"

func TestWeightSchedule(t *testing.T) {
	tests := []struct {
		position int
		want     float64
	}{
		{1, 100},
		{2, 95},
		{3, 90},
		{4, 85},
		{5, 80},
		{6, 75},
		{7, 70},
		{8, 65},
		{9, 60},
		{10, 55},
		{11, 48},
		{15, 40},
		{20, 30},
		{21, 29},
		{30, 20},
		{40, 10},
		{48, 2},
		{49, 1},
		{50, 1},
		{51, 1},
		{100, 1},
		{1000, 1},
	}
	for _, tt := range tests {
		if got := Weight(tt.position); got != tt.want {
			t.Errorf("Weight(%d) = %v, want %v", tt.position, got, tt.want)
		}
	}
}

func TestWeightDegenerateInput(t *testing.T) {
	for _, position := range []int{0, -1, -100} {
		if got := Weight(position); got != 0 {
			t.Errorf("Weight(%d) = %v, want 0", position, got)
		}
	}
}

// Weights must never increase with worse rank.
func TestWeightMonotone(t *testing.T) {
	prev := Weight(1)
	for position := 2; position <= 500; position++ {
		w := Weight(position)
		if w > prev {
			t.Fatalf("Weight(%d) = %v exceeds Weight(%d) = %v", position, w, position-1, prev)
		}
		prev = w
	}
}

// Every positive position contributes at least 1.
func TestWeightFloor(t *testing.T) {
	for position := 1; position <= 10000; position++ {
		if w := Weight(position); w < 1 {
			t.Fatalf("Weight(%d) = %v, below floor of 1", position, w)
		}
	}
}
