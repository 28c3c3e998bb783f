package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studify/backend/core/shop"
)

type itemRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Price     int    `db:"price"`
	Available bool   `db:"available"`
	ImageKey  string `db:"image_key"`
}

func (r itemRow) toDomain() shop.Item {
	return shop.Item{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		Available: r.Available,
		ImageKey:  r.ImageKey,
	}
}

type transactionRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ItemID    string    `db:"item_id"`
	ItemName  string    `db:"item_name"`
	Type      string    `db:"type"`
	Price     int       `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

func (r transactionRow) toDomain() shop.Transaction {
	return shop.Transaction{
		ID:        r.ID,
		UserID:    r.UserID,
		ItemID:    r.ItemID,
		ItemName:  r.ItemName,
		Type:      r.Type,
		Price:     r.Price,
		CreatedAt: r.CreatedAt,
	}
}

type shopRepository struct {
	db *sqlx.DB
}

var _ shop.Repository = (*shopRepository)(nil) // interface compliance check

func NewShopRepository(db *sqlx.DB) *shopRepository {
	return &shopRepository{db: db}
}

func (repo shopRepository) CreateItem(ctx context.Context, item shop.Item) (shop.Item, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	row := itemRow{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Available: item.Available,
		ImageKey:  item.ImageKey,
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO shop_item (id, name, price, available, image_key)
		VALUES (:id, :name, :price, :available, :image_key)`, row)
	if err != nil {
		return shop.Item{}, errors.Wrap(err, "inserting shop item")
	}
	return row.toDomain(), nil
}

func (repo shopRepository) GetItemByID(ctx context.Context, id string) (shop.Item, error) {
	var row itemRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM shop_item WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return shop.Item{}, shop.ErrItemNotFound
		}
		return shop.Item{}, errors.Wrap(err, "getting shop item")
	}
	return row.toDomain(), nil
}

func (repo shopRepository) QueryAllItems(ctx context.Context) ([]shop.Item, error) {
	return repo.queryItems(ctx, `SELECT * FROM shop_item`)
}

func (repo shopRepository) QueryAvailableItems(ctx context.Context) ([]shop.Item, error) {
	return repo.queryItems(ctx, `SELECT * FROM shop_item WHERE available`)
}

func (repo shopRepository) queryItems(ctx context.Context, query string) ([]shop.Item, error) {
	var rows []itemRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying shop items")
	}
	items := make([]shop.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (repo shopRepository) UpdateItem(ctx context.Context, item shop.Item, available *bool) (shop.Item, error) {
	orig, err := repo.GetItemByID(ctx, item.ID)
	if err != nil {
		return shop.Item{}, err
	}

	if item.Name != "" {
		orig.Name = item.Name
	}
	if item.Price >= 0 {
		orig.Price = item.Price
	}
	if item.ImageKey != "" {
		orig.ImageKey = item.ImageKey
	}
	if available != nil {
		orig.Available = *available
	}

	row := itemRow{
		ID:        orig.ID,
		Name:      orig.Name,
		Price:     orig.Price,
		Available: orig.Available,
		ImageKey:  orig.ImageKey,
	}
	_, err = repo.db.NamedExecContext(ctx, `
		UPDATE shop_item
		SET name = :name, price = :price, available = :available, image_key = :image_key
		WHERE id = :id`, row)
	if err != nil {
		return shop.Item{}, errors.Wrap(err, "updating shop item")
	}
	return orig, nil
}

func (repo shopRepository) DeleteItemByID(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM shop_item WHERE id = $1`, id)
	return errors.Wrap(err, "deleting shop item")
}

func (repo shopRepository) CreateTransaction(ctx context.Context, tx shop.Transaction) (shop.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	row := transactionRow{
		ID:        tx.ID,
		UserID:    tx.UserID,
		ItemID:    tx.ItemID,
		ItemName:  tx.ItemName,
		Type:      tx.Type,
		Price:     tx.Price,
		CreatedAt: tx.CreatedAt.UTC(),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO transaction (id, user_id, item_id, item_name, type, price, created_at)
		VALUES (:id, :user_id, :item_id, :item_name, :type, :price, :created_at)`, row)
	if err != nil {
		return shop.Transaction{}, errors.Wrap(err, "inserting transaction")
	}
	return row.toDomain(), nil
}

func (repo shopRepository) QueryAllTransactions(ctx context.Context) ([]shop.Transaction, error) {
	var rows []transactionRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM transaction ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying transactions")
	}
	txs := make([]shop.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, row.toDomain())
	}
	return txs, nil
}
