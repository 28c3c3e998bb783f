package shop

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studify/backend/core/avatar"
	"github.com/studify/backend/core/progression"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrItemNotFound      = errors.New("shop item not found")
	ErrItemUnavailable   = errors.New("shop item is not available")
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrAlreadyOwned      = errors.New("item already owned")
	ErrNotOwned          = errors.New("item not owned")
)

type (
	Repository interface {
		CreateItem(ctx context.Context, item Item) (Item, error)
		GetItemByID(ctx context.Context, id string) (Item, error)
		QueryAllItems(ctx context.Context) ([]Item, error)
		QueryAvailableItems(ctx context.Context) ([]Item, error)
		UpdateItem(ctx context.Context, item Item, available *bool) (Item, error)
		DeleteItemByID(ctx context.Context, id string) error

		CreateTransaction(ctx context.Context, tx Transaction) (Transaction, error)
		QueryAllTransactions(ctx context.Context) ([]Transaction, error)
	}

	Service struct {
		repo      Repository
		progSvc   *progression.Service
		avatarSvc *avatar.Service
	}
)

func NewService(repo Repository, progSvc *progression.Service, avatarSvc *avatar.Service) *Service {
	return &Service{
		repo:      repo,
		progSvc:   progSvc,
		avatarSvc: avatarSvc,
	}
}

// Catalog returns the available items sorted by name, the way the shop
// screen lists them.
func (svc *Service) Catalog(ctx context.Context) ([]Item, error) {
	items, err := svc.repo.QueryAvailableItems(ctx)
	if err != nil {
		return nil, err
	}
	sortItems(items)
	return items, nil
}

// QueryAll returns every item, available or not; admin management view.
func (svc *Service) QueryAll(ctx context.Context) ([]Item, error) {
	items, err := svc.repo.QueryAllItems(ctx)
	if err != nil {
		return nil, err
	}
	sortItems(items)
	return items, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Item, error) {
	return svc.repo.GetItemByID(ctx, id)
}

func (svc *Service) CreateItem(ctx context.Context, ni NewItem) (Item, error) {
	available := true
	if ni.Available != nil {
		available = *ni.Available
	}
	return svc.repo.CreateItem(ctx, Item{
		Name:      ni.Name,
		Price:     ni.Price,
		Available: available,
		ImageKey:  ni.ImageKey,
	})
}

func (svc *Service) UpdateItem(ctx context.Context, id string, ui UpdateItem) (Item, error) {
	item := Item{ID: id, Name: ui.Name, ImageKey: ui.ImageKey}
	if ui.Price != nil {
		item.Price = *ui.Price
	} else {
		item.Price = -1 // repo keeps the current price
	}
	return svc.repo.UpdateItem(ctx, item, ui.Available)
}

// SetAvailable toggles an item in or out of the catalog without touching
// its other fields.
func (svc *Service) SetAvailable(ctx context.Context, id string, available bool) (Item, error) {
	return svc.repo.UpdateItem(ctx, Item{ID: id, Price: -1}, &available)
}

func (svc *Service) DeleteItem(ctx context.Context, id string) error {
	return svc.repo.DeleteItemByID(ctx, id)
}

func (svc *Service) Transactions(ctx context.Context) ([]Transaction, error) {
	return svc.repo.QueryAllTransactions(ctx)
}

// Purchase buys an item for the user: checks affordability against the
// progression coin balance, deducts the price, grants the accessory and
// records a BUY transaction.
func (svc *Service) Purchase(ctx context.Context, userID, itemID string) (progression.State, error) {
	item, err := svc.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return progression.State{}, err
	}
	if !item.Available {
		return progression.State{}, ErrItemUnavailable
	}

	profile, err := svc.avatarSvc.Get(ctx, userID)
	if err != nil {
		return progression.State{}, err
	}
	if profile.Owns(item.ID) {
		return progression.State{}, ErrAlreadyOwned
	}

	state := svc.progSvc.Start(ctx, userID)
	if state.Coins < item.Price {
		return progression.State{}, ErrInsufficientCoins
	}

	state, err = svc.progSvc.OverrideCoins(ctx, userID, state.Coins-item.Price)
	if err != nil {
		return progression.State{}, err
	}
	if _, err = svc.avatarSvc.Grant(ctx, userID, item.ID); err != nil {
		return progression.State{}, err
	}

	_, err = svc.repo.CreateTransaction(ctx, Transaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Type:      TxBuy,
		Price:     item.Price,
		CreatedAt: NowFunc().UTC(),
	})
	return state, err
}

// Sell buys an item back from the user at Item.SellPrice, revokes the
// accessory and records a SELL transaction with a negative price.
func (svc *Service) Sell(ctx context.Context, userID, itemID string) (progression.State, int, error) {
	item, err := svc.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return progression.State{}, 0, err
	}

	profile, err := svc.avatarSvc.Get(ctx, userID)
	if err != nil {
		return progression.State{}, 0, err
	}
	if !profile.Owns(item.ID) {
		return progression.State{}, 0, ErrNotOwned
	}

	sellPrice := item.SellPrice()
	state := svc.progSvc.Start(ctx, userID)
	state, err = svc.progSvc.OverrideCoins(ctx, userID, state.Coins+sellPrice)
	if err != nil {
		return progression.State{}, 0, err
	}
	if _, err = svc.avatarSvc.Revoke(ctx, userID, item.ID); err != nil {
		return progression.State{}, 0, err
	}

	_, err = svc.repo.CreateTransaction(ctx, Transaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Type:      TxSell,
		Price:     -sellPrice,
		CreatedAt: NowFunc().UTC(),
	})
	return state, sellPrice, err
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
