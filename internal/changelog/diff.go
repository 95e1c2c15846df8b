package changelog

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// EmptyDisplay is shown for null, missing and blank values.
const EmptyDisplay = "(未設定)"

// FieldLabel maps an audited field to its display label. The order of a
// label list is the order of the resulting changes.
type FieldLabel struct {
	Field string
	Label string
}

type valueKind int

const (
	kindEmpty valueKind = iota
	kindNumber
	kindTime
	kindBool
	kindText
)

type normalized struct {
	kind valueKind
	num  decimal.Decimal
	at   time.Time
	b    bool
	text string
}

// Diff compares before and after for every labelled field and returns the
// fields whose normalized values differ. Fields without a label are ignored.
func Diff(before, after map[string]any, labels []FieldLabel) []model.FieldChange {
	changes := []model.FieldChange{}
	for _, l := range labels {
		from := normalize(before[l.Field])
		to := normalize(after[l.Field])
		if equal(from, to) {
			continue
		}
		changes = append(changes, model.FieldChange{
			Field: l.Field,
			Label: l.Label,
			From:  display(from),
			To:    display(to),
		})
	}
	return changes
}

func equal(a, b normalized) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case kindEmpty:
		return true
	case kindNumber:
		return a.num.Equal(b.num)
	case kindTime:
		return a.at.Equal(b.at)
	case kindBool:
		return a.b == b.b
	default:
		return a.text == b.text
	}
}

func normalize(v any) normalized {
	switch x := v.(type) {
	case nil:
		return normalized{kind: kindEmpty}
	case decimal.Decimal:
		return normalized{kind: kindNumber, num: x}
	case *decimal.Decimal:
		if x == nil {
			return normalized{kind: kindEmpty}
		}
		return normalized{kind: kindNumber, num: *x}
	case decimal.NullDecimal:
		if !x.Valid {
			return normalized{kind: kindEmpty}
		}
		return normalized{kind: kindNumber, num: x.Decimal}
	case int:
		return normalized{kind: kindNumber, num: decimal.NewFromInt(int64(x))}
	case int32:
		return normalized{kind: kindNumber, num: decimal.NewFromInt32(x)}
	case int64:
		return normalized{kind: kindNumber, num: decimal.NewFromInt(x)}
	case *int:
		if x == nil {
			return normalized{kind: kindEmpty}
		}
		return normalized{kind: kindNumber, num: decimal.NewFromInt(int64(*x))}
	case float64:
		return normalized{kind: kindNumber, num: decimal.NewFromFloat(x)}
	case *big.Int:
		if x == nil {
			return normalized{kind: kindEmpty}
		}
		return normalized{kind: kindNumber, num: decimal.NewFromBigInt(x, 0)}
	case time.Time:
		if x.IsZero() {
			return normalized{kind: kindEmpty}
		}
		return normalized{kind: kindTime, at: x}
	case *time.Time:
		if x == nil || x.IsZero() {
			return normalized{kind: kindEmpty}
		}
		return normalized{kind: kindTime, at: *x}
	case bool:
		return normalized{kind: kindBool, b: x}
	case *bool:
		if x == nil {
			return normalized{kind: kindEmpty}
		}
		return normalized{kind: kindBool, b: *x}
	case string:
		return normalizeText(x)
	case *string:
		if x == nil {
			return normalized{kind: kindEmpty}
		}
		return normalizeText(*x)
	case []string:
		return normalizeText(strings.Join(x, ", "))
	case fmt.Stringer:
		return normalizeText(x.String())
	default:
		return normalizeText(fmt.Sprint(x))
	}
}

func normalizeText(s string) normalized {
	if strings.TrimSpace(s) == "" {
		return normalized{kind: kindEmpty}
	}
	return normalized{kind: kindText, text: s}
}

func display(n normalized) string {
	switch n.kind {
	case kindEmpty:
		return EmptyDisplay
	case kindNumber:
		return n.num.String()
	case kindTime:
		return n.at.UTC().Format("2006-01-02 15:04")
	case kindBool:
		if n.b {
			return "はい"
		}
		return "いいえ"
	default:
		return n.text
	}
}
