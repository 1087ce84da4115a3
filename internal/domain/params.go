package domain

// StepConfig is the intra-day step ladder used by the state machine
// for Learning/Relearning cards (§3, §4.3).
type StepConfig struct {
	LearningSteps        []float64 // minutes
	RelearningSteps      []float64 // minutes
	GraduatingInterval   float64   // days
	EasyGraduatingInterval float64 // days
}

// DefaultStepConfig returns the §6 configuration defaults.
func DefaultStepConfig() StepConfig {
	return StepConfig{
		LearningSteps:          []float64{1, 10},
		RelearningSteps:        []float64{10},
		GraduatingInterval:     1,
		EasyGraduatingInterval: 4,
	}
}

// FSRSParameters holds the 19 FSRS-5 weights plus the two knobs that
// control interval computation (§3, §4.1).
type FSRSParameters struct {
	W                []float64
	RequestRetention float64
	MaximumInterval  float64
}

// DefaultFSRSWeights are the FSRS-5 reference weights shipped by the
// open-spaced-repetition project, used as the default parameter set
// and as the seed the optimizer starts gradient descent from.
var DefaultFSRSWeights = []float64{
	0.4072, 1.1829, 3.1262, 15.4722, 7.2102, 0.5316, 1.0651, 0.0234,
	1.616, 0.1544, 1.0824, 1.9813, 0.0953, 0.2975, 2.2042, 0.2407,
	2.9466, 0.5034, 0.6567,
}

// DefaultFSRSParameters returns the §6 configuration defaults.
func DefaultFSRSParameters() FSRSParameters {
	w := make([]float64, len(DefaultFSRSWeights))
	copy(w, DefaultFSRSWeights)
	return FSRSParameters{
		W:                w,
		RequestRetention: 0.9,
		MaximumInterval:  36500,
	}
}

// SM2Parameters holds the classic SuperMemo-2 knobs (§3, §4.2).
type SM2Parameters struct {
	InitialEF    float64
	MinEF        float64
	HardMult     float64
	EasyMult     float64
	Steps        []float64 // minutes, learning ladder
	Intervals    []float64 // days, for reps 1 and 2
	MaxInterval  float64
	PerDayLimits int
}

// DefaultSM2Parameters returns the §6 configuration defaults.
func DefaultSM2Parameters() SM2Parameters {
	return SM2Parameters{
		InitialEF:    2.5,
		MinEF:        1.3,
		HardMult:     1.2,
		EasyMult:     1.3,
		Steps:        []float64{1, 10},
		Intervals:    []float64{1, 6},
		MaxInterval:  36500,
		PerDayLimits: 200,
	}
}

// StudyPreset selects which cards a session pulls from, per §3.
type StudyPreset struct {
	TagFilter   []string
	DeckFilter  []string
	StateFilter StudyStateFilter
	IsPinned    bool
}

// StudyStateFilter enables/disables each CardState bucket.
type StudyStateFilter struct {
	New      bool
	Review   bool
	Learning bool
}

// Matches implements the §3 preset predicate: status must be Active,
// and (tag filter empty or any-match), and (deck filter empty or
// match), and the card's state must be an allowed bucket.
func (p StudyPreset) Matches(c Card) bool {
	if c.Status != Active {
		return false
	}
	if len(p.TagFilter) > 0 && !c.HasAnyTag(p.TagFilter) {
		return false
	}
	if len(p.DeckFilter) > 0 {
		found := false
		for _, d := range p.DeckFilter {
			if d == c.DeckID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	switch c.Scheduling.State {
	case New:
		return p.StateFilter.New
	case Review:
		return p.StateFilter.Review
	case Learning, Relearning:
		return p.StateFilter.Learning
	default:
		return false
	}
}
