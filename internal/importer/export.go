package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

var typeLabels = map[model.ItemType]string{
	model.ItemTypeProduct:     "商品",
	model.ItemTypeConsignment: "委託",
}

// Export writes every item matching filters as CSV and reports how many rows it wrote.
func (im *Importer) Export(ctx context.Context, w io.Writer, filters *dto.ItemFilters) (int, error) {
	items, err := im.items.ExportItems(ctx, filters)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// WriteCSV writes items under the unified headers. References are written by
// name so the output can be imported again. A BOM is written first for
// spreadsheet applications.
func WriteCSV(w io.Writer, items []model.InventoryItem) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)

	head := make([]string, len(exportHeaders))
	for i, c := range exportHeaders {
		head[i] = c.header
	}
	if err := cw.Write(head); err != nil {
		return err
	}

	for i := range items {
		cells := exportCells(&items[i])
		row := make([]string, len(exportHeaders))
		for n, c := range exportHeaders {
			row[n] = cells[c.col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportCells(it *model.InventoryItem) map[column]string {
	tags := make([]string, len(it.Tags))
	for n, t := range it.Tags {
		tags[n] = t.Name
	}
	sold := "いいえ"
	if it.IsSold {
		sold = "はい"
	}
	soldAt := ""
	if it.SoldAt != nil {
		soldAt = it.SoldAt.UTC().Format(time.RFC3339)
	}

	return map[column]string{
		colSKU:           it.SKU,
		colType:          typeLabels[it.ItemType],
		colName:          it.Name,
		colSpecification: it.Specification,
		colDesigner:      it.Designer,
		colQuantity:      strconv.Itoa(it.Quantity),
		colCostPrice:     money(it.CostPrice),
		colListPrice:     money(it.ListPrice),
		colManufacturer:  deref(it.ManufacturerName),
		colCategory:      deref(it.CategoryName),
		colLocation:      deref(it.LocationName),
		colUnit:          deref(it.UnitName),
		colTags:          strings.Join(tags, "|"),
		colSold:          sold,
		colSoldAt:        soldAt,
		colNotes:         it.Notes,
	}
}

func money(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
