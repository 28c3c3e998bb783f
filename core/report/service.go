// Package report builds the admin back-office summary: registrations and
// item sales, optionally narrowed to a calendar month.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/studify/backend/core/shop"
	"github.com/studify/backend/core/user"
)

// AllTime selects every record regardless of month.
const AllTime = 0

type (
	Registration struct {
		UserID       string    `json:"user_id"`
		Username     string    `json:"username"`
		RegisteredAt time.Time `json:"registered_at"`
	}

	// ItemSales aggregates the BUY/SELL ledger for one item; SELL entries
	// carry negative prices so Revenue is net of buy-backs.
	ItemSales struct {
		ItemName string `json:"item_name"`
		Count    int    `json:"count"`
		Revenue  int    `json:"revenue"`
	}

	Summary struct {
		Registrations []Registration `json:"registrations"`
		Sales         []ItemSales    `json:"sales"`
	}

	Service struct {
		usrSvc  *user.Service
		shopSvc *shop.Service
	}
)

func NewService(usrSvc *user.Service, shopSvc *shop.Service) *Service {
	return &Service{usrSvc: usrSvc, shopSvc: shopSvc}
}

// Summary aggregates registrations and sales for the given calendar month
// (any year), or everything when month is AllTime. Registrations come back
// newest first, sales by revenue descending.
func (svc *Service) Summary(ctx context.Context, month time.Month) (Summary, error) {
	users, err := svc.usrSvc.QueryAll(ctx)
	if err != nil {
		return Summary{}, err
	}

	registrations := make([]Registration, 0, len(users))
	for _, usr := range users {
		if !inMonth(usr.CreatedAt, month) {
			continue
		}
		registrations = append(registrations, Registration{
			UserID:       usr.ID,
			Username:     usr.Username,
			RegisteredAt: usr.CreatedAt,
		})
	}
	sort.Slice(registrations, func(i, j int) bool {
		return registrations[i].RegisteredAt.After(registrations[j].RegisteredAt)
	})

	txs, err := svc.shopSvc.Transactions(ctx)
	if err != nil {
		return Summary{}, err
	}

	byItem := make(map[string]*ItemSales)
	for _, tx := range txs {
		if tx.Type != shop.TxBuy && tx.Type != shop.TxSell {
			continue
		}
		if !inMonth(tx.CreatedAt, month) {
			continue
		}
		sales, ok := byItem[tx.ItemName]
		if !ok {
			sales = &ItemSales{ItemName: tx.ItemName}
			byItem[tx.ItemName] = sales
		}
		sales.Count++
		sales.Revenue += tx.Price
	}

	allSales := make([]ItemSales, 0, len(byItem))
	for _, sales := range byItem {
		allSales = append(allSales, *sales)
	}
	sort.Slice(allSales, func(i, j int) bool {
		return allSales[i].Revenue > allSales[j].Revenue
	})

	return Summary{Registrations: registrations, Sales: allSales}, nil
}

func inMonth(t time.Time, month time.Month) bool {
	if month == AllTime {
		return true
	}
	return t.Month() == month
}
