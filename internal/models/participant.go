package models

import "github.com/google/uuid"

// Participant represents a single person taking part in the draw
type Participant struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	CoupleID *uuid.UUID `json:"couple_id,omitempty"` // nil for singles
}

// Roster is an immutable snapshot of the registered participants,
// taken at the moment a draw is started.
type Roster struct {
	Participants []Participant
}

// Get returns the participant with the given id.
func (r Roster) Get(id uuid.UUID) (Participant, bool) {
	for _, p := range r.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// IndexByName maps display names to participant ids.
func (r Roster) IndexByName() map[string]uuid.UUID {
	idx := make(map[string]uuid.UUID, len(r.Participants))
	for _, p := range r.Participants {
		idx[p.Name] = p.ID
	}
	return idx
}

// HasEmails reports whether the roster carries email addresses.
// The registry enforces an all-or-none rule, so checking any one
// participant is enough.
func (r Roster) HasEmails() bool {
	for _, p := range r.Participants {
		if p.Email != "" {
			return true
		}
	}
	return false
}

// Assignment maps every giver to exactly one recipient.
type Assignment map[uuid.UUID]uuid.UUID

// PastDraw is one recorded draw from a previous year. Pairs are keyed
// by display name because participant ids are regenerated on every run.
type PastDraw struct {
	Year  int
	Pairs map[string]string // giver name -> recipient name
}
