package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/studify/backend/core/shop"
)

type shopRepository struct {
	items *itemTable
	txs   *transactionTable
}

var _ shop.Repository = (*shopRepository)(nil) // interface compliance check

func NewShopRepository(db *DB) *shopRepository {
	return &shopRepository{items: db.item, txs: db.transaction}
}

func (repo *shopRepository) CreateItem(_ context.Context, item shop.Item) (shop.Item, error) {
	repo.items.Lock()
	defer repo.items.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	repo.items.table[item.ID] = &item
	return item, nil
}

func (repo *shopRepository) GetItemByID(_ context.Context, id string) (shop.Item, error) {
	repo.items.RLock()
	defer repo.items.RUnlock()

	if item, ok := repo.items.table[id]; ok {
		return *item, nil
	}
	return shop.Item{}, shop.ErrItemNotFound
}

func (repo *shopRepository) QueryAllItems(_ context.Context) ([]shop.Item, error) {
	repo.items.RLock()
	defer repo.items.RUnlock()

	items := make([]shop.Item, 0, len(repo.items.table))
	for _, item := range repo.items.table {
		items = append(items, *item)
	}
	return items, nil
}

func (repo *shopRepository) QueryAvailableItems(_ context.Context) ([]shop.Item, error) {
	repo.items.RLock()
	defer repo.items.RUnlock()

	var items []shop.Item
	for _, item := range repo.items.table {
		if item.Available {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (repo *shopRepository) UpdateItem(_ context.Context, item shop.Item, available *bool) (shop.Item, error) {
	repo.items.Lock()
	defer repo.items.Unlock()

	// only save set fields
	origItem, ok := repo.items.table[item.ID]
	if !ok {
		return shop.Item{}, shop.ErrItemNotFound
	}
	if item.Name != "" {
		origItem.Name = item.Name
	}
	if item.Price >= 0 {
		origItem.Price = item.Price
	}
	if item.ImageKey != "" {
		origItem.ImageKey = item.ImageKey
	}
	if available != nil {
		origItem.Available = *available
	}

	repo.items.table[item.ID] = origItem
	return *origItem, nil
}

func (repo *shopRepository) DeleteItemByID(_ context.Context, id string) error {
	repo.items.Lock()
	defer repo.items.Unlock()
	delete(repo.items.table, id)
	return nil
}

func (repo *shopRepository) CreateTransaction(_ context.Context, tx shop.Transaction) (shop.Transaction, error) {
	repo.txs.Lock()
	defer repo.txs.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	repo.txs.table = append(repo.txs.table, tx)
	return tx, nil
}

func (repo *shopRepository) QueryAllTransactions(_ context.Context) ([]shop.Transaction, error) {
	repo.txs.RLock()
	defer repo.txs.RUnlock()

	txs := make([]shop.Transaction, len(repo.txs.table))
	copy(txs, repo.txs.table)
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	return txs, nil
}
