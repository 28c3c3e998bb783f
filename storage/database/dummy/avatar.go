package dummydb

import (
	"context"

	"github.com/studify/backend/core/avatar"
)

type avatarRepository struct {
	db *avatarTable
}

var _ avatar.Repository = (*avatarRepository)(nil) // interface compliance check

func NewAvatarRepository(db *DB) *avatarRepository {
	return &avatarRepository{db: db.avatar}
}

func (repo *avatarRepository) GetProfile(_ context.Context, userID string) (avatar.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if profile, ok := repo.db.table[userID]; ok {
		return profile, nil
	}
	return avatar.Profile{}, avatar.ErrNotFound
}

func (repo *avatarRepository) SaveProfile(_ context.Context, userID string, profile avatar.Profile) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[userID] = profile
	return nil
}
