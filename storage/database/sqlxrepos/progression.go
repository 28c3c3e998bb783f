package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studify/backend/core/progression"
)

type progressRow struct {
	UserID      string    `db:"user_id"`
	Level       int       `db:"level"`
	XP          int       `db:"xp"`
	NextLevelXP int       `db:"next_level_xp"`
	Coins       int       `db:"coins"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type progressionStore struct {
	db *sqlx.DB
}

var _ progression.Store = (*progressionStore)(nil) // interface compliance check

func NewProgressionStore(db *sqlx.DB) *progressionStore {
	return &progressionStore{db: db}
}

func (store progressionStore) GetProgress(ctx context.Context, userID string) (progression.State, error) {
	var row progressRow
	err := store.db.GetContext(ctx, &row, `SELECT * FROM progress WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return progression.State{}, progression.ErrNotFound
		}
		return progression.State{}, errors.Wrap(err, "getting progress")
	}
	return progression.State{
		Level:       row.Level,
		XP:          row.XP,
		NextLevelXP: row.NextLevelXP,
		Coins:       row.Coins,
	}, nil
}

func (store progressionStore) SaveProgress(ctx context.Context, userID string, state progression.State) error {
	row := progressRow{
		UserID:      userID,
		Level:       state.Level,
		XP:          state.XP,
		NextLevelXP: state.NextLevelXP,
		Coins:       state.Coins,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := store.db.NamedExecContext(ctx, `
		INSERT INTO progress (user_id, level, xp, next_level_xp, coins, updated_at)
		VALUES (:user_id, :level, :xp, :next_level_xp, :coins, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET level = :level, xp = :xp, next_level_xp = :next_level_xp, coins = :coins, updated_at = :updated_at`, row)
	return errors.Wrap(err, "saving progress")
}
