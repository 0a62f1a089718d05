package santa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"secret-santa/internal/delivery"
	"secret-santa/internal/draw"
	"secret-santa/internal/history"
	"secret-santa/internal/models"
	"secret-santa/internal/registry"

	"github.com/rs/zerolog"
)

// ErrNoAssignment is returned when Send or RecordHistory is called
// before a successful Draw.
var ErrNoAssignment = errors.New("no assignment has been drawn yet")

// ErrNoGateway is returned when Send is called with no delivery channel
// configured.
var ErrNoGateway = errors.New("no delivery channel configured")

type Config struct {
	// Conceal keeps the assignment away from the organizer: Draw
	// returns a result without pair data and nothing is logged.
	Conceal bool
	// HistoryYears controls repeat exclusion: 0 disables it, N > 0
	// excludes pairs from the last N draws, -1 excludes all of them.
	HistoryYears int
}

// Service runs a draw end to end: roster snapshot, constraint build,
// assignment generation, and delivery. It is the only component that
// ever holds the raw assignment; when concealment is on, pair data
// flows from here straight into the gateway and nowhere else.
type Service struct {
	registry *registry.Registry
	engine   *draw.Engine
	history  *history.Store   // may be nil
	gateway  delivery.Gateway // may be nil
	cfg      Config
	log      zerolog.Logger

	mu         sync.Mutex
	roster     models.Roster
	assignment models.Assignment
}

// New creates the orchestrator. history and gateway may be nil when the
// corresponding features are not configured.
func New(reg *registry.Registry, engine *draw.Engine, hist *history.Store, gateway delivery.Gateway, cfg Config) *Service {
	return &Service{
		registry: reg,
		engine:   engine,
		history:  hist,
		gateway:  gateway,
		cfg:      cfg,
		log:      zerolog.New(os.Stdout).With().Str("component", "santa").Logger(),
	}
}

// Draw produces a fresh assignment from the current roster and returns
// its displayable form. The raw assignment is retained internally for
// Send and RecordHistory only.
func (s *Service) Draw() (draw.DisplayableResult, error) {
	roster, err := s.registry.Snapshot()
	if err != nil {
		return draw.DisplayableResult{}, err
	}

	var past []models.PastDraw
	if s.history != nil && s.cfg.HistoryYears != 0 {
		past, err = s.history.Recent(s.cfg.HistoryYears)
		if err != nil {
			return draw.DisplayableResult{}, fmt.Errorf("failed to load history: %w", err)
		}
	}

	forbidden, err := draw.BuildForbidden(roster, past)
	if err != nil {
		return draw.DisplayableResult{}, err
	}

	assignment, err := s.engine.Generate(roster, forbidden)
	if err != nil {
		return draw.DisplayableResult{}, err
	}

	s.mu.Lock()
	s.roster = roster
	s.assignment = assignment
	s.mu.Unlock()

	s.log.Info().Int("participants", len(assignment)).Bool("concealed", s.cfg.Conceal).Msg("Assignment drawn")
	return draw.Finalize(assignment, roster, s.cfg.Conceal), nil
}

// HasAssignment reports whether a draw has completed.
func (s *Service) HasAssignment() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignment != nil
}

// Send dispatches one notification per giver through the configured
// gateway and reports how many went out.
func (s *Service) Send(ctx context.Context) (int, error) {
	if s.gateway == nil {
		return 0, ErrNoGateway
	}

	notifications, err := s.notifications()
	if err != nil {
		return 0, err
	}
	return s.gateway.Deliver(ctx, notifications)
}

// RecordHistory persists the held assignment under the given year so
// future draws can exclude its pairs.
func (s *Service) RecordHistory(year int) error {
	if s.history == nil {
		return errors.New("no history store configured")
	}

	s.mu.Lock()
	roster, assignment := s.roster, s.assignment
	s.mu.Unlock()

	if assignment == nil {
		return ErrNoAssignment
	}
	return s.history.Record(year, assignment, roster)
}

// notifications builds the gateway payload: giver contact details plus
// the recipient's display name, nothing more.
func (s *Service) notifications() ([]delivery.Notification, error) {
	s.mu.Lock()
	roster, assignment := s.roster, s.assignment
	s.mu.Unlock()

	if assignment == nil {
		return nil, ErrNoAssignment
	}

	notifications := make([]delivery.Notification, 0, len(assignment))
	for _, giver := range roster.Participants {
		recipient, ok := roster.Get(assignment[giver.ID])
		if !ok {
			return nil, fmt.Errorf("assignment references unknown participant %s", assignment[giver.ID])
		}
		notifications = append(notifications, delivery.Notification{
			GiverName:     giver.Name,
			GiverEmail:    giver.Email,
			GiverPhone:    giver.Phone,
			RecipientName: recipient.Name,
		})
	}
	return notifications, nil
}
