package conversation

import (
	"context"
	"sync"
	"time"

	"yawlit/models"
)

// managed pairs a live conversation with its scratchpad and lock. The lock
// serializes turns: concurrent messages for one conversation id are applied
// one at a time, each seeing the previous turn's outcome.
type managed struct {
	mu   sync.Mutex
	conv *models.ConversationContext
	pad  *Scratchpad
}

// Manager owns conversation lifecycle: lookup or creation per id, per-
// conversation locking, and snapshot persistence through the context store.
type Manager struct {
	mu    sync.Mutex
	store ContextStore
	live  map[string]*managed
}

func NewManager(store ContextStore) *Manager {
	return &Manager{store: store, live: make(map[string]*managed)}
}

// Acquire returns the conversation and scratchpad for id, locked. The
// returned release function must be called when the turn is done. A snapshot
// in the context store rehydrates the conversation after a restart; an
// unknown id starts a fresh conversation in the entry state.
func (m *Manager) Acquire(ctx context.Context, id string) (*models.ConversationContext, *Scratchpad, func(), error) {
	m.mu.Lock()
	mc, ok := m.live[id]
	if !ok {
		mc = &managed{}
		m.live[id] = mc
	}
	m.mu.Unlock()

	mc.mu.Lock()
	if mc.conv == nil {
		conv, pad, err := m.load(ctx, id)
		if err != nil {
			mc.mu.Unlock()
			return nil, nil, nil, err
		}
		mc.conv, mc.pad = conv, pad
	}
	return mc.conv, mc.pad, mc.mu.Unlock, nil
}

func (m *Manager) load(ctx context.Context, id string) (*models.ConversationContext, *Scratchpad, error) {
	snap, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if snap == nil {
		now := time.Now().UTC()
		return &models.ConversationContext{
			ID:        id,
			State:     models.StateEntry,
			Metadata:  models.ConversationMetadata{RetroactiveEnabled: true},
			CreatedAt: now,
			UpdatedAt: now,
		}, NewScratchpad(), nil
	}
	conv := snap.Context
	pad := NewScratchpad()
	pad.Restore(snap.Fields)
	return &conv, pad, nil
}

// Persist writes the current snapshot for id. The caller must hold the
// conversation lock.
func (m *Manager) Persist(ctx context.Context, conv *models.ConversationContext, pad *Scratchpad) error {
	conv.UpdatedAt = time.Now().UTC()
	return m.store.Set(ctx, conv.ID, &Snapshot{Context: *conv, Fields: pad.Fields()})
}

// Drop evicts the live entry and clears the stored snapshot, used when a
// conversation is abandoned.
func (m *Manager) Drop(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
	return m.store.Clear(ctx, id)
}
