package dummydb

import (
	"context"

	"github.com/studify/backend/core/progression"
)

type progressionStore struct {
	db *progressTable
}

var _ progression.Store = (*progressionStore)(nil) // interface compliance check

func NewProgressionStore(db *DB) *progressionStore {
	return &progressionStore{db: db.progress}
}

func (store *progressionStore) GetProgress(_ context.Context, userID string) (progression.State, error) {
	store.db.RLock()
	defer store.db.RUnlock()

	if state, ok := store.db.table[userID]; ok {
		return state, nil
	}
	return progression.State{}, progression.ErrNotFound
}

func (store *progressionStore) SaveProgress(_ context.Context, userID string, state progression.State) error {
	store.db.Lock()
	defer store.db.Unlock()
	store.db.table[userID] = state
	return nil
}
