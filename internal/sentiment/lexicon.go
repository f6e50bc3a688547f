package sentiment

import "strings"

// Lexicon is a small word-polarity model: the score is the net polarity of
// known words divided by the number of hits. Empty or fully unknown text is
// neutral.
type Lexicon struct {
	polarity map[string]float64
	version  string
}

// NewLexicon builds the default lexicon model.
func NewLexicon() *Lexicon {
	return &Lexicon{
		version: "lexicon/v1",
		polarity: map[string]float64{
			"amazing":   1.0,
			"great":     0.8,
			"love":      0.8,
			"good":      0.6,
			"happy":     0.6,
			"excited":   0.6,
			"fun":       0.5,
			"nice":      0.4,
			"fine":      0.2,
			"meh":       -0.2,
			"boring":    -0.4,
			"bad":       -0.6,
			"sad":       -0.6,
			"awful":     -0.8,
			"hate":      -0.8,
			"terrible":  -1.0,
			"horrible":  -1.0,
			"broken":    -0.5,
			"confusing": -0.4,
		},
	}
}

func (l *Lexicon) Version() string { return l.version }

// Assess never fails; it exists to satisfy the Model contract, whose other
// implementations may call out over the network.
func (l *Lexicon) Assess(text string) (float64, error) {
	var sum float64
	hits := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if p, ok := l.polarity[word]; ok {
			sum += p
			hits++
		}
	}
	if hits == 0 {
		return 0, nil
	}
	return sum / float64(hits), nil
}
