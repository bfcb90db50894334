package rating

// candidates skips multiples of 20 so the selector never suggests the old
// five-star steps.
var candidates = [...]int{0, 9, 15, 21, 27, 33, 39, 45, 51, 57, 63, 69, 75, 81, 87, 93, 99}

type Option struct {
	Value     int  `json:"value"`
	Selected  bool `json:"selected"`
	Synthetic bool `json:"synthetic,omitempty"`
}

func Candidates() []int {
	out := make([]int, len(candidates))
	copy(out, candidates[:])
	return out
}

func IsCandidate(v int) bool {
	for _, c := range candidates {
		if c == v {
			return true
		}
	}
	return false
}

// Options lists the selector entries for current. Exactly one entry is
// selected and its value is current; when current is off the candidate list
// a synthetic entry is appended for it.
func Options(current int) []Option {
	out := make([]Option, 0, len(candidates)+1)
	for _, c := range candidates {
		out = append(out, Option{Value: c, Selected: c == current})
	}
	if !IsCandidate(current) {
		out = append(out, Option{Value: current, Selected: true, Synthetic: true})
	}
	return out
}
