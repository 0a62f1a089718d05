package draw

import (
	"fmt"

	"secret-santa/internal/models"

	"github.com/google/uuid"
)

// Pair is an ordered giver/recipient combination.
type Pair struct {
	Giver     uuid.UUID
	Recipient uuid.UUID
}

// Forbidden is the set of giver/recipient pairs that must never appear
// in a valid assignment.
type Forbidden map[Pair]struct{}

// Contains reports whether the pair is forbidden.
func (f Forbidden) Contains(giver, recipient uuid.UUID) bool {
	_, ok := f[Pair{Giver: giver, Recipient: recipient}]
	return ok
}

// BuildForbidden derives the forbidden-pairs set for a roster:
// every self pair, every ordered pair inside a couple, and every
// giver/recipient pair from the supplied past draws. Past pairs are
// matched by name; pairs naming people no longer on the roster are
// ignored. Pure function of its inputs.
func BuildForbidden(roster models.Roster, past []models.PastDraw) (Forbidden, error) {
	if len(roster.Participants) < 2 {
		return nil, fmt.Errorf("%w: at least 2 participants are required", models.ErrInvalidConfiguration)
	}

	seenID := make(map[uuid.UUID]bool, len(roster.Participants))
	seenName := make(map[string]bool, len(roster.Participants))
	couples := make(map[uuid.UUID][]uuid.UUID)
	for _, p := range roster.Participants {
		if seenID[p.ID] {
			return nil, fmt.Errorf("%w: duplicate participant id %s", models.ErrInvalidConfiguration, p.ID)
		}
		if seenName[p.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", models.ErrInvalidConfiguration, p.Name)
		}
		seenID[p.ID] = true
		seenName[p.Name] = true
		if p.CoupleID != nil {
			couples[*p.CoupleID] = append(couples[*p.CoupleID], p.ID)
		}
	}

	for cid, members := range couples {
		if len(members) < 2 {
			return nil, fmt.Errorf("%w: couple %s has fewer than 2 members", models.ErrInvalidConfiguration, cid)
		}
	}

	forbidden := make(Forbidden)
	for _, p := range roster.Participants {
		forbidden[Pair{Giver: p.ID, Recipient: p.ID}] = struct{}{}
	}
	for _, members := range couples {
		for _, a := range members {
			for _, b := range members {
				if a != b {
					forbidden[Pair{Giver: a, Recipient: b}] = struct{}{}
				}
			}
		}
	}

	byName := roster.IndexByName()
	for _, d := range past {
		for giver, recipient := range d.Pairs {
			gid, gok := byName[giver]
			rid, rok := byName[recipient]
			if gok && rok {
				forbidden[Pair{Giver: gid, Recipient: rid}] = struct{}{}
			}
		}
	}

	return forbidden, nil
}
