package model

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ItemType string

const (
	ItemTypeProduct     ItemType = "PRODUCT"
	ItemTypeConsignment ItemType = "CONSIGNMENT"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeProduct || t == ItemTypeConsignment
}

// SKUPrefix is the prefix of sequentially assigned SKUs for the type.
func (t ItemType) SKUPrefix() string {
	if t == ItemTypeConsignment {
		return "CSG-"
	}
	return "PRD-"
}

type TagRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// InventoryItem is either a PRODUCT or a CONSIGNMENT; ItemType is the discriminant.
type InventoryItem struct {
	BaseModel
	SKU            string              `db:"sku" json:"sku"`
	ItemType       ItemType            `db:"item_type" json:"itemType"`
	Name           string              `db:"name" json:"name"`
	Specification  string              `db:"specification" json:"specification"`
	Designer       string              `db:"designer" json:"designer"`
	Quantity       int                 `db:"quantity" json:"quantity"`
	CostPrice      decimal.NullDecimal `db:"cost_price" json:"costPrice"`
	ListPrice      decimal.NullDecimal `db:"list_price" json:"listPrice"`
	ManufacturerID *string             `db:"manufacturer_id" json:"manufacturerId"`
	CategoryID     *string             `db:"category_id" json:"categoryId"`
	LocationID     *string             `db:"location_id" json:"locationId"`
	UnitID         *string             `db:"unit_id" json:"unitId"`
	IsSold         bool                `db:"is_sold" json:"isSold"`
	SoldAt         *time.Time          `db:"sold_at" json:"soldAt"`
	Notes          string              `db:"notes" json:"notes"`

	// Joined data
	ManufacturerName *string  `db:"manufacturer_name" json:"manufacturerName"`
	CategoryName     *string  `db:"category_name" json:"categoryName"`
	LocationName     *string  `db:"location_name" json:"locationName"`
	UnitName         *string  `db:"unit_name" json:"unitName"`
	Tags             []TagRef `db:"-" json:"tags"`
}

// TagIDs returns the ids of the attached tags in attachment order.
func (i *InventoryItem) TagIDs() []string {
	ids := make([]string, len(i.Tags))
	for n, t := range i.Tags {
		ids[n] = t.ID
	}
	return ids
}

// ApplySoldState keeps IsSold and SoldAt consistent: a sold time marks the
// item sold and a sold item without one is stamped with now.
func (i *InventoryItem) ApplySoldState(now time.Time) {
	if i.SoldAt != nil {
		i.IsSold = true
		return
	}
	if i.IsSold {
		t := now
		i.SoldAt = &t
	}
}

// MarkUnsold clears both halves of the sold state.
func (i *InventoryItem) MarkUnsold() {
	i.IsSold = false
	i.SoldAt = nil
}

// Clone returns a copy that shares no mutable state with i.
func (i *InventoryItem) Clone() *InventoryItem {
	c := *i
	c.Tags = append([]TagRef(nil), i.Tags...)
	return &c
}

// LogSubject describes the item for change-log entries.
func (i *InventoryItem) LogSubject() LogSubject {
	itemType := i.ItemType
	sku := i.SKU
	return LogSubject{
		EntityType: EntityTypeItem,
		EntityID:   i.ID,
		EntityName: i.Name,
		EntitySKU:  &sku,
		ItemType:   &itemType,
	}
}

// AuditSnapshot returns the audited fields keyed by field name. References are
// captured by display name so the change log reads like the UI.
func (i *InventoryItem) AuditSnapshot() map[string]any {
	tagNames := make([]string, len(i.Tags))
	for n, t := range i.Tags {
		tagNames[n] = t.Name
	}
	sort.Strings(tagNames)

	return map[string]any{
		"name":          i.Name,
		"specification": i.Specification,
		"designer":      i.Designer,
		"quantity":      i.Quantity,
		"costPrice":     i.CostPrice,
		"listPrice":     i.ListPrice,
		"manufacturer":  i.ManufacturerName,
		"category":      i.CategoryName,
		"location":      i.LocationName,
		"unit":          i.UnitName,
		"tags":          strings.Join(tagNames, ", "),
		"isSold":        i.IsSold,
		"soldAt":        i.SoldAt,
		"notes":         i.Notes,
	}
}

// MaxQuantity is the largest quantity the items table stores (INTEGER).
const MaxQuantity = math.MaxInt32

// QuantityMode selects how a quantity update is applied.
type QuantityMode string

const (
	QuantitySet       QuantityMode = "set"
	QuantityIncrement QuantityMode = "increment"
)
