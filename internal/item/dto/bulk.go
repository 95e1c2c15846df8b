package dto

import (
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type QuantityUpdate struct {
	Mode  model.QuantityMode `json:"mode"`
	Value int                `json:"value"`
}

func (q *QuantityUpdate) Validate() error {
	switch q.Mode {
	case model.QuantitySet:
		if q.Value < 0 {
			return apperror.Validation("invalid quantity update", apperror.FieldError{Field: "updates.quantity.value", Message: "must not be negative for set"})
		}
		if q.Value > model.MaxQuantity {
			return apperror.Validation("invalid quantity update", apperror.FieldError{Field: "updates.quantity.value", Message: "must be at most " + strconv.Itoa(model.MaxQuantity)})
		}
	case model.QuantityIncrement:
		if q.Value < -model.MaxQuantity || q.Value > model.MaxQuantity {
			return apperror.Validation("invalid quantity update", apperror.FieldError{Field: "updates.quantity.value", Message: "must be between -" + strconv.Itoa(model.MaxQuantity) + " and " + strconv.Itoa(model.MaxQuantity)})
		}
	default:
		return apperror.Validation("invalid quantity update", apperror.FieldError{Field: "updates.quantity.mode", Message: "must be set or increment"})
	}
	return nil
}

// BulkUpdates lists the fields a bulk edit applies. An empty reference id
// clears the reference; an empty TagIDs removes every tag.
type BulkUpdates struct {
	LocationID     *string         `json:"locationId"`
	ManufacturerID *string         `json:"manufacturerId"`
	CategoryID     *string         `json:"categoryId"`
	TagIDs         *[]string       `json:"tagIds"`
	Quantity       *QuantityUpdate `json:"quantity"`
}

func (u *BulkUpdates) Empty() bool {
	return u.LocationID == nil && u.ManufacturerID == nil && u.CategoryID == nil && u.TagIDs == nil && u.Quantity == nil
}

// HasScalar reports whether the single-statement update step has work.
func (u *BulkUpdates) HasScalar() bool {
	return u.LocationID != nil || u.ManufacturerID != nil || u.CategoryID != nil ||
		(u.Quantity != nil && u.Quantity.Mode == model.QuantitySet)
}

type BulkEditInput struct {
	IDs      []string        `json:"ids"`
	Updates  BulkUpdates     `json:"updates"`
	ItemType *model.ItemType `json:"-"` // restricts targets when set
}

func (in *BulkEditInput) Validate(maxIDs int) error {
	ids, err := normalizeIDs(in.IDs, maxIDs)
	if err != nil {
		return err
	}
	in.IDs = ids
	if in.Updates.Empty() {
		return apperror.Validation("invalid bulk edit", apperror.FieldError{Field: "updates", Message: "at least one field is required"})
	}
	if in.Updates.Quantity != nil {
		return in.Updates.Quantity.Validate()
	}
	return nil
}

type BulkDeleteInput struct {
	IDs      []string        `json:"ids"`
	ItemType *model.ItemType `json:"-"`
}

func (in *BulkDeleteInput) Validate(maxIDs int) error {
	ids, err := normalizeIDs(in.IDs, maxIDs)
	if err != nil {
		return err
	}
	in.IDs = ids
	return nil
}

// normalizeIDs trims and de-duplicates ids, keeping first-seen order.
func normalizeIDs(ids []string, maxIDs int) ([]string, error) {
	if len(ids) == 0 {
		return nil, apperror.Validation("invalid ids", apperror.FieldError{Field: "ids", Message: "at least one id is required"})
	}
	if len(ids) > maxIDs {
		return nil, apperror.Validation("invalid ids", apperror.FieldError{Field: "ids", Message: "at most " + strconv.Itoa(maxIDs) + " ids are allowed"})
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, apperror.Validation("invalid ids", apperror.FieldError{Field: "ids", Message: "must not contain blank ids"})
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

type BulkEditResult struct {
	UpdatedCount int    `json:"updatedCount"`
	Message      string `json:"message"`
}

type BulkDeleteResult struct {
	DeletedCount int    `json:"deletedCount"`
	Message      string `json:"message"`
}

// ScalarUpdate is what the single-statement bulk update writes.
type ScalarUpdate struct {
	LocationID     *string
	ManufacturerID *string
	CategoryID     *string
	Quantity       *int
}
