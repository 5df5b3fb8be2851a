// tasks/library.go
package tasks

import (
	"errors"
	"math/rand"
)

// Category distinguishes the two prompt kinds a task cell carries.
type Category string

const (
	CategoryTruth Category = "truth"
	CategoryDare  Category = "dare"
)

var ErrEmptyLibrary = errors.New("task library must have at least one truth and one dare")

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryTruth || c == CategoryDare
}

// Pair is the truth/dare binding frozen onto one task cell.
type Pair struct {
	Truth string `json:"truth"`
	Dare  string `json:"dare"`
}

// Get returns the text for the given category.
func (p Pair) Get(c Category) string {
	if c == CategoryDare {
		return p.Dare
	}
	return p.Truth
}

// Library holds the prompt pools. Content is supplied by the presentation
// layer or config; the engine only samples from it.
type Library struct {
	Truths []string
	Dares  []string
}

// DefaultLibrary is a small built-in pool so the server runs without any
// content configuration.
func DefaultLibrary() *Library {
	return &Library{
		Truths: []string{
			"What was your first impression of your partner?",
			"What is one thing you have never told your partner?",
			"What is your partner's most annoying habit?",
			"Describe your ideal date night.",
			"What song reminds you of your partner?",
		},
		Dares: []string{
			"Hold your partner's hand for the rest of the game.",
			"Give your partner a compliment in a dramatic voice.",
			"Do your best impression of your partner.",
			"Let your partner choose your next profile photo.",
			"Whisper something sweet to your partner.",
		},
	}
}

// NewLibrary builds a library from config overrides, keeping the defaults
// for any empty pool.
func NewLibrary(truths, dares []string) *Library {
	lib := DefaultLibrary()
	if len(truths) > 0 {
		lib.Truths = truths
	}
	if len(dares) > 0 {
		lib.Dares = dares
	}
	return lib
}

// Validate ensures both pools are non-empty.
func (l *Library) Validate() error {
	if len(l.Truths) == 0 || len(l.Dares) == 0 {
		return ErrEmptyLibrary
	}
	return nil
}

func (l *Library) pool(c Category) []string {
	if c == CategoryDare {
		return l.Dares
	}
	return l.Truths
}

// Pick returns a uniformly random prompt from the category pool.
func (l *Library) Pick(c Category, rng *rand.Rand) string {
	pool := l.pool(c)
	return pool[rng.Intn(len(pool))]
}

// PickExcluding returns a uniformly random prompt that differs from exclude.
// If the pool has exactly one entry, that entry is returned unchanged; it is
// the documented single-entry edge case, not an error.
func (l *Library) PickExcluding(c Category, exclude string, rng *rand.Rand) string {
	pool := l.pool(c)
	if len(pool) == 1 {
		return pool[0]
	}

	candidates := make([]string, 0, len(pool)-1)
	for _, text := range pool {
		if text != exclude {
			candidates = append(candidates, text)
		}
	}
	if len(candidates) == 0 {
		// Pool is all duplicates of the excluded text.
		return exclude
	}
	return candidates[rng.Intn(len(candidates))]
}

// Generate binds one random truth and one random dare to each given cell
// index. Runs exactly once per game start; the result is frozen into the
// room's task table.
func (l *Library) Generate(cellIndices []int, rng *rand.Rand) map[int]Pair {
	result := make(map[int]Pair, len(cellIndices))
	for _, idx := range cellIndices {
		result[idx] = Pair{
			Truth: l.Pick(CategoryTruth, rng),
			Dare:  l.Pick(CategoryDare, rng),
		}
	}
	return result
}
