package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/studify/backend/core/avatar"
)

type avatarRow struct {
	UserID      string         `db:"user_id"`
	BaseColor   string         `db:"base_color"`
	Accessories pq.StringArray `db:"accessories"`
	Owned       pq.StringArray `db:"owned"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type avatarRepository struct {
	db *sqlx.DB
}

var _ avatar.Repository = (*avatarRepository)(nil) // interface compliance check

func NewAvatarRepository(db *sqlx.DB) *avatarRepository {
	return &avatarRepository{db: db}
}

func (repo avatarRepository) GetProfile(ctx context.Context, userID string) (avatar.Profile, error) {
	var row avatarRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM avatar WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return avatar.Profile{}, avatar.ErrNotFound
		}
		return avatar.Profile{}, errors.Wrap(err, "getting avatar profile")
	}
	return avatar.Profile{
		BaseColor:   row.BaseColor,
		Accessories: row.Accessories,
		Owned:       row.Owned,
	}, nil
}

func (repo avatarRepository) SaveProfile(ctx context.Context, userID string, profile avatar.Profile) error {
	row := avatarRow{
		UserID:      userID,
		BaseColor:   profile.BaseColor,
		Accessories: profile.Accessories,
		Owned:       profile.Owned,
		UpdatedAt:   time.Now().UTC(),
	}
	if row.Accessories == nil {
		row.Accessories = pq.StringArray{}
	}
	if row.Owned == nil {
		row.Owned = pq.StringArray{}
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO avatar (user_id, base_color, accessories, owned, updated_at)
		VALUES (:user_id, :base_color, :accessories, :owned, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET base_color = :base_color, accessories = :accessories, owned = :owned, updated_at = :updated_at`, row)
	return errors.Wrap(err, "saving avatar profile")
}
