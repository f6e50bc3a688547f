// Package sentiment wraps the sentiment model the scoring engine calls into.
// The engine treats the model as a black box and only enforces the output
// range, so alternative models can be swapped in behind the Model interface.
package sentiment

// Model assesses the sentiment of a piece of text. Implementations should
// return a value in [-1, 1]; the scoring engine clamps anything outside.
type Model interface {
	Assess(text string) (float64, error)
	Version() string
}
