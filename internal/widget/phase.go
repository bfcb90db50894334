package widget

type Phase int

const (
	PhaseUnrated Phase = iota
	PhaseRated
	PhaseSubmitting
	PhaseSubmittedAwaitingNote
)

func (p Phase) String() string {
	switch p {
	case PhaseUnrated:
		return "unrated"
	case PhaseRated:
		return "rated"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmittedAwaitingNote:
		return "submitted_awaiting_note"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func initialPhase(isRated bool) Phase {
	if isRated {
		return PhaseRated
	}
	return PhaseUnrated
}
