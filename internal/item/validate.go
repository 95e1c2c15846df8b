package item

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

const maxNameLength = 200

type validator func(it *model.InventoryItem, fe *apperror.FieldErrors)

// validators holds one rule set per item type.
var validators = map[model.ItemType]validator{
	model.ItemTypeProduct:     validateProduct,
	model.ItemTypeConsignment: validateConsignment,
}

// Validate normalizes it and checks it against the rules of its item type.
// Consignment cost price is always zero.
func Validate(it *model.InventoryItem) error {
	v, ok := validators[it.ItemType]
	if !ok {
		return apperror.Validation("invalid item", apperror.FieldError{Field: "itemType", Message: "must be PRODUCT or CONSIGNMENT"})
	}

	it.Name = strings.TrimSpace(it.Name)
	var fe apperror.FieldErrors
	validateCommon(it, &fe)
	v(it, &fe)
	return fe.Err("invalid item")
}

func validateCommon(it *model.InventoryItem, fe *apperror.FieldErrors) {
	if it.Name == "" {
		fe.Add("name", "is required")
	} else if len([]rune(it.Name)) > maxNameLength {
		fe.Add("name", "must be at most 200 characters")
	}
	if it.Quantity < 0 {
		fe.Add("quantity", "must not be negative")
	} else if it.Quantity > model.MaxQuantity {
		fe.Add("quantity", "must be at most "+strconv.Itoa(model.MaxQuantity))
	}
	if it.ListPrice.Valid && it.ListPrice.Decimal.IsNegative() {
		fe.Add("listPrice", "must not be negative")
	}
}

func validateProduct(it *model.InventoryItem, fe *apperror.FieldErrors) {
	switch {
	case !it.CostPrice.Valid:
		fe.Add("costPrice", "is required")
	case it.CostPrice.Decimal.IsNegative():
		fe.Add("costPrice", "must not be negative")
	}
}

func validateConsignment(it *model.InventoryItem, _ *apperror.FieldErrors) {
	it.CostPrice = decimal.NewNullDecimal(decimal.Zero)
}
