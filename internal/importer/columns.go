package importer

import (
	"strings"
)

type column int

const (
	colSKU column = iota
	colType
	colName
	colSpecification
	colDesigner
	colQuantity
	colCostPrice
	colListPrice
	colManufacturer
	colCategory
	colLocation
	colUnit
	colTags
	colSold
	colSoldAt
	colNotes
)

// exportHeaders is the unified header row, in export order.
var exportHeaders = []struct {
	col    column
	header string
}{
	{colSKU, "SKU"},
	{colType, "種別"},
	{colName, "名前"},
	{colSpecification, "仕様"},
	{colDesigner, "デザイナー"},
	{colQuantity, "数量"},
	{colCostPrice, "原価"},
	{colListPrice, "定価"},
	{colManufacturer, "メーカー"},
	{colCategory, "カテゴリ"},
	{colLocation, "保管場所"},
	{colUnit, "単位"},
	{colTags, "タグ"},
	{colSold, "売約済"},
	{colSoldAt, "売約日"},
	{colNotes, "備考"},
}

var aliases = map[string]column{
	"sku":           colSKU,
	"種別":            colType,
	"区分":            colType,
	"type":          colType,
	"itemtype":      colType,
	"名前":            colName,
	"商品名":           colName,
	"name":          colName,
	"仕様":            colSpecification,
	"specification": colSpecification,
	"デザイナー":         colDesigner,
	"designer":      colDesigner,
	"数量":            colQuantity,
	"在庫数":           colQuantity,
	"quantity":      colQuantity,
	"原価":            colCostPrice,
	"costprice":     colCostPrice,
	"定価":            colListPrice,
	"listprice":     colListPrice,
	"メーカー":          colManufacturer,
	"manufacturer":  colManufacturer,
	"カテゴリ":          colCategory,
	"カテゴリー":         colCategory,
	"category":      colCategory,
	"保管場所":          colLocation,
	"location":      colLocation,
	"単位":            colUnit,
	"unit":          colUnit,
	"タグ":            colTags,
	"tags":          colTags,
	"売約済":           colSold,
	"sold":          colSold,
	"issold":        colSold,
	"売約日":           colSoldAt,
	"soldat":        colSoldAt,
	"備考":            colNotes,
	"notes":         colNotes,
}

const bom = "\ufeff"

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, bom)
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// header maps recognised columns to their index in a record. Unknown headers
// are ignored; the first occurrence of a column wins.
type header map[column]int

func parseHeader(record []string) header {
	h := make(header, len(record))
	for i, raw := range record {
		col, ok := aliases[normalizeHeader(raw)]
		if !ok {
			continue
		}
		if _, dup := h[col]; !dup {
			h[col] = i
		}
	}
	return h
}

func (h header) has(col column) bool {
	_, ok := h[col]
	return ok
}

// get returns the trimmed cell of col, or "" when the column or cell is absent.
func (h header) get(record []string, col column) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
