package item

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

func TestResolveQuantity(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		mode     model.QuantityMode
		value    int
		want     int
		wantKind apperror.Kind
		negative bool
		tooLarge bool
	}{
		{name: "set ignores current", current: 7, mode: model.QuantitySet, value: 3, want: 3},
		{name: "set zero", current: 7, mode: model.QuantitySet, value: 0, want: 0},
		{name: "set negative", current: 7, mode: model.QuantitySet, value: -1, wantKind: apperror.KindValidation},
		{name: "increment", current: 5, mode: model.QuantityIncrement, value: -3, want: 2},
		{name: "increment zero is a no-op", current: 5, mode: model.QuantityIncrement, value: 0, want: 5},
		{name: "increment to exactly zero", current: 5, mode: model.QuantityIncrement, value: -5, want: 0},
		{name: "increment below zero", current: 2, mode: model.QuantityIncrement, value: -10, negative: true},
		{name: "set maximum", current: 0, mode: model.QuantitySet, value: model.MaxQuantity, want: model.MaxQuantity},
		{name: "set above maximum", current: 0, mode: model.QuantitySet, value: model.MaxQuantity + 1, wantKind: apperror.KindValidation},
		{name: "increment to exactly maximum", current: 5, mode: model.QuantityIncrement, value: model.MaxQuantity - 5, want: model.MaxQuantity},
		{name: "increment past maximum", current: model.MaxQuantity, mode: model.QuantityIncrement, value: 1, tooLarge: true},
		{name: "huge positive delta is not reported as negative", current: 5, mode: model.QuantityIncrement, value: math.MaxInt, wantKind: apperror.KindValidation},
		{name: "huge negative delta", current: 5, mode: model.QuantityIncrement, value: math.MinInt, wantKind: apperror.KindValidation},
		{name: "unknown mode", current: 1, mode: "multiply", value: 2, wantKind: apperror.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveQuantity(tt.current, tt.mode, tt.value)
			switch {
			case tt.negative:
				assert.ErrorIs(t, err, ErrNegativeQuantity)
			case tt.tooLarge:
				assert.ErrorIs(t, err, ErrQuantityTooLarge)
			case tt.wantKind != "":
				assert.True(t, apperror.Is(err, tt.wantKind))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewNegativeQuantityError(t *testing.T) {
	it := &model.InventoryItem{BaseModel: model.BaseModel{ID: "i1"}, SKU: "PRD-000001", Quantity: 2}
	err := NewNegativeQuantityError(it, -10)

	assert.True(t, apperror.Is(err, apperror.KindBusinessRule))
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	var nq *NegativeQuantityError
	require.True(t, errors.As(err, &nq))
	assert.Equal(t, "i1", nq.ItemID)
	assert.Equal(t, 2, nq.Current)
	assert.Equal(t, -10, nq.Delta)
	assert.Contains(t, err.Error(), "PRD-000001")
}

func TestNewQuantityLimitError(t *testing.T) {
	it := &model.InventoryItem{BaseModel: model.BaseModel{ID: "i1"}, SKU: "PRD-000001", Quantity: model.MaxQuantity}
	err := NewQuantityLimitError(it, 1)

	assert.True(t, apperror.Is(err, apperror.KindBusinessRule))
	assert.ErrorIs(t, err, ErrQuantityTooLarge)
	assert.NotErrorIs(t, err, ErrNegativeQuantity)
	assert.Contains(t, err.Error(), "PRD-000001")
}
