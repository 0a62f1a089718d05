package registry

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"secret-santa/internal/models"

	"github.com/google/uuid"
)

// Pragmatic email pattern, not full RFC 5322.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// PersonInput is one person as entered by the organizer.
type PersonInput struct {
	Name  string
	Email string
	Phone string
}

// Registry collects participants and their couple groupings before a
// draw. Mutation stops mattering once Snapshot has been taken: the
// matching engine only ever sees the snapshot copy.
type Registry struct {
	mu           sync.RWMutex
	participants []models.Participant
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		participants: make([]models.Participant, 0),
	}
}

// AddCouple registers two people who may not draw each other.
func (r *Registry) AddCouple(a, b PersonInput) error {
	a = a.trimmed()
	b = b.trimmed()
	if a.Name == "" || b.Name == "" {
		return fmt.Errorf("%w: both names of a couple are required", models.ErrInvalidConfiguration)
	}
	if a.Name == b.Name {
		return fmt.Errorf("%w: couple members must have distinct names", models.ErrInvalidConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	coupleID := uuid.New()
	r.participants = append(r.participants,
		models.Participant{ID: uuid.New(), Name: a.Name, Email: a.Email, Phone: a.Phone, CoupleID: &coupleID},
		models.Participant{ID: uuid.New(), Name: b.Name, Email: b.Email, Phone: b.Phone, CoupleID: &coupleID},
	)
	return nil
}

// AddSingle registers one person with no partner exclusion.
func (r *Registry) AddSingle(p PersonInput) error {
	p = p.trimmed()
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants = append(r.participants, models.Participant{
		ID:    uuid.New(),
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
	})
	return nil
}

// Participants returns a copy of the current participant list.
func (r *Registry) Participants() []models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// Reset drops all registered participants.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants = r.participants[:0]
}

// Snapshot validates the registered participants and returns an
// immutable roster for the matching engine.
//
// Email rule: if nobody entered an email the roster is valid but has no
// addresses; if anyone did, everyone must have a valid one.
func (r *Registry) Snapshot() (models.Roster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.participants) < 2 {
		return models.Roster{}, fmt.Errorf("%w: at least 2 participants are required", models.ErrInvalidConfiguration)
	}

	seen := make(map[string]bool, len(r.participants))
	anyEmail := false
	for _, p := range r.participants {
		if seen[p.Name] {
			return models.Roster{}, fmt.Errorf("%w: duplicate name %q", models.ErrInvalidConfiguration, p.Name)
		}
		seen[p.Name] = true
		if p.Email != "" {
			anyEmail = true
		}
	}

	if anyEmail {
		for _, p := range r.participants {
			if !emailRe.MatchString(p.Email) {
				return models.Roster{}, fmt.Errorf(
					"%w: invalid or missing email for %q (use valid addresses for everyone, or leave all blank)",
					models.ErrInvalidConfiguration, p.Name)
			}
		}
	}

	out := make([]models.Participant, len(r.participants))
	for i, p := range r.participants {
		out[i] = p
		if p.CoupleID != nil {
			cid := *p.CoupleID
			out[i].CoupleID = &cid
		}
	}
	return models.Roster{Participants: out}, nil
}

func (p PersonInput) trimmed() PersonInput {
	return PersonInput{
		Name:  strings.TrimSpace(p.Name),
		Email: strings.TrimSpace(p.Email),
		Phone: strings.TrimSpace(p.Phone),
	}
}
