package draw

import "secret-santa/internal/models"

// Pairing is one giver/recipient row for display.
type Pairing struct {
	Giver     string
	Recipient string
}

// DisplayableResult is what the organizer-facing surface is allowed to
// see. When Concealed is true it carries no pair data at all; the raw
// assignment stays behind the orchestrator boundary and only reaches
// the delivery gateway.
type DisplayableResult struct {
	Concealed bool
	Count     int
	Pairs     []Pairing // nil when concealed
}

// Finalize converts an assignment into its displayable form. Pairs are
// listed in roster order.
func Finalize(assignment models.Assignment, roster models.Roster, conceal bool) DisplayableResult {
	result := DisplayableResult{
		Concealed: conceal,
		Count:     len(assignment),
	}
	if conceal {
		return result
	}

	result.Pairs = make([]Pairing, 0, len(assignment))
	for _, p := range roster.Participants {
		recipient, ok := roster.Get(assignment[p.ID])
		if !ok {
			continue
		}
		result.Pairs = append(result.Pairs, Pairing{Giver: p.Name, Recipient: recipient.Name})
	}
	return result
}
