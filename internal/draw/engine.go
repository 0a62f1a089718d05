package draw

import (
	"fmt"
	"math/rand"
	"time"

	"secret-santa/internal/models"

	"github.com/google/uuid"
)

// DefaultMaxAttempts is a generous ceiling: for realistic group sizes
// the chance of exhausting it is negligible unless the constraints are
// structurally infeasible.
const DefaultMaxAttempts = 2000

// Engine produces assignments by shuffling candidate recipients and
// validating the result against the forbidden-pairs set, retrying up to
// a fixed ceiling. Each Generate call is independent; the only state is
// the injected random source.
type Engine struct {
	maxAttempts int
	rng         *rand.Rand
}

// NewEngine creates an engine. A non-positive maxAttempts selects
// DefaultMaxAttempts; a nil rng gets a time-seeded source. Pass a
// seeded rng for deterministic draws in tests.
func NewEngine(maxAttempts int, rng *rand.Rand) *Engine {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{maxAttempts: maxAttempts, rng: rng}
}

// Generate returns an assignment mapping every roster participant to
// exactly one other, avoiding every forbidden pair, or ErrInfeasible
// once the attempt ceiling is exhausted.
func (e *Engine) Generate(roster models.Roster, forbidden Forbidden) (models.Assignment, error) {
	n := len(roster.Participants)
	if n < 2 {
		return nil, fmt.Errorf("%w: at least 2 participants are required", models.ErrInvalidConfiguration)
	}

	givers := make([]uuid.UUID, n)
	recipients := make([]uuid.UUID, n)
	for i, p := range roster.Participants {
		givers[i] = p.ID
		recipients[i] = p.ID
	}

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		e.rng.Shuffle(n, func(i, j int) {
			recipients[i], recipients[j] = recipients[j], recipients[i]
		})
		if assignment, ok := tryPair(givers, recipients, forbidden); ok {
			return assignment, nil
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", models.ErrInfeasible, e.maxAttempts)
}

// tryPair pairs givers with recipients positionally and rejects the
// whole permutation on the first forbidden pair.
func tryPair(givers, recipients []uuid.UUID, forbidden Forbidden) (models.Assignment, bool) {
	assignment := make(models.Assignment, len(givers))
	for i, giver := range givers {
		if forbidden.Contains(giver, recipients[i]) {
			return nil, false
		}
		assignment[giver] = recipients[i]
	}
	return assignment, true
}
