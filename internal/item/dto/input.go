package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type CreateItemInput struct {
	ItemType       model.ItemType   `json:"itemType"`
	Name           string           `json:"name"`
	Specification  string           `json:"specification"`
	Designer       string           `json:"designer"`
	Quantity       int              `json:"quantity"`
	CostPrice      *decimal.Decimal `json:"costPrice"`
	ListPrice      *decimal.Decimal `json:"listPrice"`
	ManufacturerID *string          `json:"manufacturerId"`
	CategoryID     *string          `json:"categoryId"`
	LocationID     *string          `json:"locationId"`
	UnitID         *string          `json:"unitId"`
	TagIDs         []string         `json:"tagIds"`
	IsSold         bool             `json:"isSold"`
	SoldAt         *time.Time       `json:"soldAt"`
	Notes          string           `json:"notes"`
}

// Nullable tells an absent JSON field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// UpdateItemInput is a partial update: nil fields are left untouched and an
// empty reference id clears the reference. Item type and SKU are immutable.
type UpdateItemInput struct {
	ID             string                    `json:"-"`
	Name           *string                   `json:"name"`
	Specification  *string                   `json:"specification"`
	Designer       *string                   `json:"designer"`
	Quantity       *int                      `json:"quantity"`
	CostPrice      *decimal.Decimal          `json:"costPrice"`
	ListPrice      Nullable[decimal.Decimal] `json:"listPrice"`
	ManufacturerID *string                   `json:"manufacturerId"`
	CategoryID     *string                   `json:"categoryId"`
	LocationID     *string                   `json:"locationId"`
	UnitID         *string                   `json:"unitId"`
	TagIDs         *[]string                 `json:"tagIds"`
	IsSold         *bool                     `json:"isSold"`
	SoldAt         *time.Time                `json:"soldAt"`
	Notes          *string                   `json:"notes"`
}
