package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

var (
	errUnknownType = errors.New("unrecognized type")
	errBadBool     = errors.New("unrecognized sold value")
)

var typeSynonyms = map[string]model.ItemType{
	"商品":          model.ItemTypeProduct,
	"product":     model.ItemTypeProduct,
	"委託":          model.ItemTypeConsignment,
	"委託品":         model.ItemTypeConsignment,
	"consignment": model.ItemTypeConsignment,
}

// parseType maps a type cell to an item type; blank yields fallback.
func parseType(s string, fallback model.ItemType) (model.ItemType, error) {
	if s == "" {
		return fallback, nil
	}
	if t, ok := typeSynonyms[strings.ToLower(s)]; ok {
		return t, nil
	}
	return "", errUnknownType
}

var boolSynonyms = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true, "はい": true, "済": true, "○": true, "sold": true,
	"false": false, "0": false, "no": false, "n": false, "いいえ": false, "未": false, "×": false, "unsold": false,
}

// parseSold reads a sold cell; blank is false.
func parseSold(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	if v, ok := boolSynonyms[strings.ToLower(s)]; ok {
		return v, nil
	}
	return false, errBadBool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006/1/2",
}

// parseSoldAt parses a date or timestamp. Values without a zone are UTC.
func parseSoldAt(s string) (*time.Time, bool) {
	if s == "" {
		return nil, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

func stripNumber(s string) string {
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	s = strings.TrimSuffix(s, "円")
	return strings.ReplaceAll(s, ",", "")
}

// parsePrice reads an optional amount; thousands separators are allowed.
func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(stripNumber(s))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseQuantity reads a non-negative integer; blank is 0.
func parseQuantity(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(stripNumber(s))
	if err != nil {
		return 0, errors.New("quantity must be an integer")
	}
	if n < 0 {
		return 0, errors.New("quantity must not be negative")
	}
	if n > model.MaxQuantity {
		return 0, fmt.Errorf("quantity must be at most %d", model.MaxQuantity)
	}
	return n, nil
}

// splitTags splits a |-delimited cell, dropping blanks and repeats.
func splitTags(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}
