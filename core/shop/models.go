package shop

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studify/backend/core"
)

// Transaction types
const (
	TxBuy  = "BUY"
	TxSell = "SELL"
)

// Resale policy: items sell back for a quarter of the sticker price, never
// below minSellPrice.
const (
	sellDivisor  = 4
	minSellPrice = 5
)

type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Available bool   `json:"available"`
	ImageKey  string `json:"image_key"`
}

// SellPrice is what the shop pays back for this item.
func (i Item) SellPrice() int {
	price := i.Price / sellDivisor
	if price < minSellPrice {
		price = minSellPrice
	}
	return price
}

// Transaction is one ledger entry; SELL entries carry a negative price so
// summing prices yields net revenue.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Type      string    `json:"type"`
	Price     int       `json:"price"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewItem contains information needed to create a shop Item.
type NewItem struct {
	Name      string `json:"name" validate:"required"`
	Price     int    `json:"price" validate:"gte=0"`
	Available *bool  `json:"available"`
	ImageKey  string `json:"image_key"`
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Name = core.CleanString(ni.Name)
	ni.ImageKey = core.CleanString(ni.ImageKey, true /* lower */)
	return validate.Struct(ni)
}

// UpdateItem defines what may be modified on an existing Item.
type UpdateItem struct {
	Name      string `json:"name"`
	Price     *int   `json:"price" validate:"omitempty,gte=0"`
	Available *bool  `json:"available"`
	ImageKey  string `json:"image_key"`
}

func (ui *UpdateItem) Validate(validate *validator.Validate) error {
	ui.Name = core.CleanString(ui.Name)
	ui.ImageKey = core.CleanString(ui.ImageKey, true /* lower */)
	return validate.Struct(ui)
}
