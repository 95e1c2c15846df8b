package changelog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLabels = []FieldLabel{
	{Field: "name", Label: "名前"},
	{Field: "quantity", Label: "数量"},
	{Field: "costPrice", Label: "原価"},
	{Field: "soldAt", Label: "売約日"},
	{Field: "isSold", Label: "売約済"},
	{Field: "location", Label: "保管場所"},
}

func TestDiff(t *testing.T) {
	loc := "倉庫A"
	t1 := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	t1Tokyo := t1.In(time.FixedZone("JST", 9*3600))

	tests := []struct {
		name   string
		before map[string]any
		after  map[string]any
		want   int
	}{
		{
			name:   "identical",
			before: map[string]any{"name": "Chair", "quantity": 3},
			after:  map[string]any{"name": "Chair", "quantity": 3},
			want:   0,
		},
		{
			name:   "decimal compared numerically",
			before: map[string]any{"costPrice": decimal.NewNullDecimal(decimal.RequireFromString("1000.00"))},
			after:  map[string]any{"costPrice": decimal.NewNullDecimal(decimal.NewFromInt(1000))},
			want:   0,
		},
		{
			name:   "times compared by instant",
			before: map[string]any{"soldAt": &t1},
			after:  map[string]any{"soldAt": &t1Tokyo},
			want:   0,
		},
		{
			name:   "nil and blank are both empty",
			before: map[string]any{"location": (*string)(nil)},
			after:  map[string]any{"location": ""},
			want:   0,
		},
		{
			name:   "unlabelled fields ignored",
			before: map[string]any{"designer": "A"},
			after:  map[string]any{"designer": "B"},
			want:   0,
		},
		{
			name:   "one field changed",
			before: map[string]any{"name": "Chair", "quantity": 3},
			after:  map[string]any{"name": "Chair", "quantity": 4},
			want:   1,
		},
		{
			name:   "reference set",
			before: map[string]any{"location": (*string)(nil)},
			after:  map[string]any{"location": &loc},
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Diff(tt.before, tt.after, testLabels), tt.want)
		})
	}
}

func TestDiffRendering(t *testing.T) {
	loc := "倉庫A"
	before := map[string]any{
		"name":     "Chair",
		"quantity": 3,
		"location": (*string)(nil),
		"isSold":   false,
	}
	after := map[string]any{
		"name":     "Chair",
		"quantity": 5,
		"location": &loc,
		"isSold":   true,
	}

	changes := Diff(before, after, testLabels)
	require.Len(t, changes, 3)

	// Output follows label order.
	assert.Equal(t, "quantity", changes[0].Field)
	assert.Equal(t, "数量", changes[0].Label)
	assert.Equal(t, "3", changes[0].From)
	assert.Equal(t, "5", changes[0].To)

	assert.Equal(t, "isSold", changes[1].Field)
	assert.Equal(t, "いいえ", changes[1].From)
	assert.Equal(t, "はい", changes[1].To)

	assert.Equal(t, "location", changes[2].Field)
	assert.Equal(t, EmptyDisplay, changes[2].From)
	assert.Equal(t, "倉庫A", changes[2].To)
}
