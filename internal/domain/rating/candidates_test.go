package rating

import "testing"

func TestOptionsAlwaysSelectCurrent(t *testing.T) {
	for current := MinValue; current <= MaxValue; current++ {
		opts := Options(current)
		selected := 0
		for _, o := range opts {
			if o.Selected {
				selected++
				if o.Value != current {
					t.Fatalf("current=%d: selected value=%d", current, o.Value)
				}
			}
		}
		if selected != 1 {
			t.Fatalf("current=%d: want exactly one selected got=%d", current, selected)
		}
		wantLen := len(candidates)
		if !IsCandidate(current) {
			wantLen++
		}
		if len(opts) != wantLen {
			t.Fatalf("current=%d: options len want=%d got=%d", current, wantLen, len(opts))
		}
	}
}

func TestCandidatesAvoidStarSteps(t *testing.T) {
	for _, c := range Candidates() {
		if c != 0 && c%20 == 0 {
			t.Fatalf("candidate %d is a five-star step", c)
		}
	}
}

func TestCandidatesReturnsCopy(t *testing.T) {
	c := Candidates()
	c[1] = 50
	if candidates[1] != 9 {
		t.Fatalf("Candidates leaked internal array")
	}
}
