package item

import (
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

var (
	ErrNegativeQuantity = errors.New("quantity would become negative")
	ErrQuantityTooLarge = errors.New("quantity would exceed the maximum")
)

// NegativeQuantityError identifies the record whose increment failed.
type NegativeQuantityError struct {
	ItemID  string
	SKU     string
	Current int
	Delta   int
}

func (e *NegativeQuantityError) Error() string {
	return fmt.Sprintf("quantity of %s would become negative: %d%+d", e.SKU, e.Current, e.Delta)
}

func (e *NegativeQuantityError) Unwrap() error {
	return ErrNegativeQuantity
}

// NewQuantityLimitError reports an increment that would pass MaxQuantity.
func NewQuantityLimitError(it *model.InventoryItem, delta int) error {
	return apperror.BusinessRule(
		fmt.Sprintf("在庫数が上限 %d を超えます: %s (現在 %d, 変更 %+d)", model.MaxQuantity, it.SKU, it.Quantity, delta),
		ErrQuantityTooLarge,
	)
}

// NewNegativeQuantityError wraps the failure as a business rule violation.
func NewNegativeQuantityError(it *model.InventoryItem, delta int) error {
	cause := &NegativeQuantityError{ItemID: it.ID, SKU: it.SKU, Current: it.Quantity, Delta: delta}
	return apperror.BusinessRule(
		fmt.Sprintf("在庫数がマイナスになります: %s (現在 %d, 変更 %+d)", it.SKU, it.Quantity, delta),
		cause,
	)
}

// ResolveQuantity applies mode to current. A set never reads current; an
// increment fails with ErrNegativeQuantity if the result would be below zero
// and with ErrQuantityTooLarge if it would pass MaxQuantity.
func ResolveQuantity(current int, mode model.QuantityMode, value int) (int, error) {
	switch mode {
	case model.QuantitySet:
		if value < 0 {
			return 0, apperror.Validation("invalid quantity", apperror.FieldError{Field: "quantity", Message: "must not be negative"})
		}
		if value > model.MaxQuantity {
			return 0, apperror.Validation("invalid quantity", apperror.FieldError{Field: "quantity", Message: fmt.Sprintf("must be at most %d", model.MaxQuantity)})
		}
		return value, nil
	case model.QuantityIncrement:
		if value < -model.MaxQuantity || value > model.MaxQuantity {
			return current, apperror.Validation("invalid quantity", apperror.FieldError{Field: "value", Message: fmt.Sprintf("must be between -%d and %d", model.MaxQuantity, model.MaxQuantity)})
		}
		// current is bounded by the column type and value by the check above.
		next := int64(current) + int64(value)
		switch {
		case next < 0:
			return current, ErrNegativeQuantity
		case next > model.MaxQuantity:
			return current, ErrQuantityTooLarge
		}
		return int(next), nil
	default:
		return current, apperror.Validation("invalid quantity", apperror.FieldError{Field: "mode", Message: "must be set or increment"})
	}
}
