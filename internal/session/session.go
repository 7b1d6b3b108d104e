// Package session owns the mutable state of one play session: the gameplay
// event log, the current game context, and the reference cache. All writes
// are serialized; pipeline instances stay stateless.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/character"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/db"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/resolver"
	"github.com/Monamimamimamo/DnD-AI-DM/internal/srd"
	"github.com/rs/zerolog/log"
)

// Session runs resolutions for one character and records their outcomes.
type Session struct {
	ID       string
	pipeline resolver.Pipeline
	cache    *srd.Cache
	store    *db.Store

	mu      sync.Mutex
	sheet   character.Sheet
	gameCtx model.GameContext
	events  []model.GameplayEvent
}

// snapshotState is the JSON state blob stored per session.
type snapshotState struct {
	Sheet   character.Sheet       `json:"character"`
	GameCtx model.GameContext     `json:"game_context"`
	Events  []model.GameplayEvent `json:"events"`
}

// New starts a session, creating its store record. The store may be nil for
// in-memory play.
func New(ctx context.Context, pipeline resolver.Pipeline, cache *srd.Cache, store *db.Store, sheet character.Sheet, gameCtx model.GameContext) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("new session id: %w", err)
	}
	s := &Session{
		ID:       id,
		pipeline: pipeline,
		cache:    cache,
		store:    store,
		sheet:    sheet,
		gameCtx:  gameCtx,
	}
	if store != nil {
		if err := store.CreateSession(ctx, id, sheet.Name, gameCtx.Location); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
	s.events = append(s.events, model.GameplayEvent{
		Timestamp:   time.Now().UTC(),
		Type:        model.EventSessionStarted,
		Description: "session started",
		Actor:       sheet.Name,
	})
	return s, nil
}

func newSessionID() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	ts := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("%s-%s", ts, hex.EncodeToString(buf)), nil
}

// Resolve runs one player action through the pipeline and appends the
// outcome to the event log. Resolutions are serialized per session.
func (s *Session) Resolve(ctx context.Context, actionText string) model.Resolution {
	s.mu.Lock()
	sheet := s.sheet
	gameCtx := s.gameCtx
	s.mu.Unlock()

	resolution := s.pipeline.Resolve(ctx, actionText, sheet, gameCtx)

	event := model.GameplayEvent{
		Timestamp:   time.Now().UTC(),
		Type:        model.EventActionResolved,
		Description: resolution.Narrative,
		Actor:       sheet.Name,
	}
	if resolution.RequiresNewAction {
		event.Type = model.EventActionImpossible
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.AppendEvent(ctx, s.ID, event); err != nil {
			log.Warn().Err(err).Str("session", s.ID).Msg("session: event not persisted")
		}
	}
	return resolution
}

// Events returns a copy of the session's event log.
func (s *Session) Events() []model.GameplayEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.GameplayEvent(nil), s.events...)
}

// SetLocation moves the session to a new location.
func (s *Session) SetLocation(ctx context.Context, location string) {
	s.mu.Lock()
	s.gameCtx.Location = location
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.UpdateSessionLocation(ctx, s.ID, location); err != nil {
			log.Warn().Err(err).Str("session", s.ID).Msg("session: location not persisted")
		}
	}
}

// Context returns the session's current game context.
func (s *Session) Context() model.GameContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameCtx
}

// Save writes the session snapshot to the store.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("session has no store")
	}
	s.mu.Lock()
	state := snapshotState{Sheet: s.sheet, GameCtx: s.gameCtx, Events: s.events}
	s.mu.Unlock()

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.store.SaveSnapshot(ctx, s.ID, string(blob)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Restore rebuilds a session from a stored snapshot.
func Restore(ctx context.Context, sessionID string, pipeline resolver.Pipeline, cache *srd.Cache, store *db.Store) (*Session, error) {
	blob, err := store.LoadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if blob == "" {
		return nil, fmt.Errorf("no snapshot for session %s", sessionID)
	}
	var state snapshotState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	return &Session{
		ID:       sessionID,
		pipeline: pipeline,
		cache:    cache,
		store:    store,
		sheet:    state.Sheet,
		gameCtx:  state.GameCtx,
		events:   state.Events,
	}, nil
}
