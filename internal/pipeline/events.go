package pipeline

// Phase is a state of a ranking run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseExtracting
	PhaseFiltering
	PhaseScoring
	PhaseRanking
	PhaseEvaluating
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseExtracting:
		return "extracting"
	case PhaseFiltering:
		return "filtering"
	case PhaseScoring:
		return "scoring"
	case PhaseRanking:
		return "ranking"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events follow this phase.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Outcome is the result kind of a completed run.
type Outcome int

const (
	// OutcomeRanked means at least one candidate was ranked.
	OutcomeRanked Outcome = iota
	// OutcomeNoCandidates means no candidate survived extraction and filtering.
	OutcomeNoCandidates
)

func (o Outcome) String() string {
	if o == OutcomeNoCandidates {
		return "no_candidates"
	}
	return "ranked"
}

// Event is published on every phase transition and after every candidate
// extraction. Candidate, Done and Total are set for extraction progress.
// Outcome is meaningful only with PhaseDone, Err only with PhaseFailed.
type Event struct {
	RunID     string
	Phase     Phase
	Candidate string
	Done      int
	Total     int
	Outcome   Outcome
	Err       error
}

// Observer receives pipeline events. Calls are serialised.
type Observer func(Event)
