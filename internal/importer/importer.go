// Package importer reads inventory items from CSV and writes them back out.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/item"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Options struct {
	// FixedType imports every row as this type and makes the type column optional.
	FixedType *model.ItemType
}

type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type Result struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors"`
}

type Metrics interface {
	ImportRows(imported, failed int)
}

// NameIndexer loads the name to id map of one master kind.
type NameIndexer interface {
	NameIndex(ctx context.Context, kind model.MasterKind) (map[string]string, error)
}

type Importer struct {
	items   item.UseCase
	masters masterdata.UseCase
	index   NameIndexer
	logger  logger.ZapLogger
	metrics Metrics
}

func NewImporter(items item.UseCase, masters masterdata.UseCase, index NameIndexer, log logger.ZapLogger, metrics Metrics) *Importer {
	return &Importer{items: items, masters: masters, index: index, logger: log, metrics: metrics}
}

// Import creates one item per data row. Rows are processed strictly in order
// because a row may reuse master data created by an earlier one. A bad row is
// reported with its 1-based line number (the header is row 1) and skipped;
// storage failures abort the run, keeping rows already imported.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options, actor model.Actor) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperror.Validation("CSV file is empty")
	}
	if err != nil {
		return nil, apperror.Validation("malformed CSV", apperror.FieldError{Field: "file", Message: err.Error()})
	}
	h := parseHeader(first)
	if err := checkHeader(h, opts); err != nil {
		return nil, err
	}

	res := &Result{Errors: []RowError{}}
	cache := newMasterCache(im.masters, im.index, actor)
	row, seen := 1, 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: row, Message: "malformed row: " + err.Error()})
			seen++
			continue
		}
		if blank(record) {
			continue
		}
		seen++

		if err := im.importRow(ctx, h, record, opts, cache, actor); err != nil {
			if apperror.KindOf(err) == apperror.KindUnexpected {
				return nil, err
			}
			res.Errors = append(res.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}
		res.Imported++
	}
	if seen == 0 {
		return nil, apperror.Validation("CSV file has no data rows")
	}

	if im.metrics != nil {
		im.metrics.ImportRows(res.Imported, len(res.Errors))
	}
	im.logger.Info("csv import finished",
		zap.Int("imported", res.Imported),
		zap.Int("failed", len(res.Errors)),
		zap.String("user_id", actor.UserID),
	)
	return res, nil
}

func checkHeader(h header, opts Options) error {
	var fe apperror.FieldErrors
	if !h.has(colName) {
		fe.Add("名前", "header is required")
	}
	if opts.FixedType == nil && !h.has(colType) {
		fe.Add("種別", "header is required")
	}
	return fe.Err("missing required CSV headers")
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func rowError(format string, args ...any) error {
	return apperror.Validation(fmt.Sprintf(format, args...))
}

func (im *Importer) importRow(ctx context.Context, h header, rec []string, opts Options, cache *masterCache, actor model.Actor) error {
	input, err := buildInput(h, rec, opts)
	if err != nil {
		return err
	}

	refs := []struct {
		col  column
		kind model.MasterKind
		dst  **string
	}{
		{colManufacturer, model.KindManufacturer, &input.ManufacturerID},
		{colCategory, model.KindCategory, &input.CategoryID},
		{colLocation, model.KindLocation, &input.LocationID},
		{colUnit, model.KindUnit, &input.UnitID},
	}
	for _, ref := range refs {
		name := h.get(rec, ref.col)
		if name == "" {
			continue
		}
		id, err := cache.resolve(ctx, ref.kind, name)
		if err != nil {
			return err
		}
		*ref.dst = &id
	}
	for _, name := range splitTags(h.get(rec, colTags)) {
		id, err := cache.resolve(ctx, model.KindTag, name)
		if err != nil {
			return err
		}
		input.TagIDs = append(input.TagIDs, id)
	}

	_, err = im.items.CreateItem(ctx, input, actor)
	return err
}

// buildInput parses the scalar cells of one row.
func buildInput(h header, rec []string, opts Options) (*dto.CreateItemInput, error) {
	itemType := model.ItemTypeProduct
	if opts.FixedType != nil {
		itemType = *opts.FixedType
	} else {
		raw := h.get(rec, colType)
		t, err := parseType(raw, model.ItemTypeProduct)
		if err != nil {
			return nil, rowError("%v: %q", err, raw)
		}
		itemType = t
	}

	name := h.get(rec, colName)
	if name == "" {
		return nil, rowError("name is required")
	}
	qty, err := parseQuantity(h.get(rec, colQuantity))
	if err != nil {
		return nil, rowError("%v", err)
	}
	cost, err := parsePrice(h.get(rec, colCostPrice))
	if err != nil {
		return nil, rowError("costPrice must be a number: %q", h.get(rec, colCostPrice))
	}
	if cost == nil && itemType == model.ItemTypeProduct {
		return nil, rowError("costPrice is required for products")
	}
	list, err := parsePrice(h.get(rec, colListPrice))
	if err != nil {
		return nil, rowError("listPrice must be a number: %q", h.get(rec, colListPrice))
	}
	sold, err := parseSold(h.get(rec, colSold))
	if err != nil {
		return nil, rowError("%v: %q", err, h.get(rec, colSold))
	}
	rawSoldAt := h.get(rec, colSoldAt)
	soldAt, ok := parseSoldAt(rawSoldAt)
	if rawSoldAt != "" && !ok {
		return nil, rowError("soldAt must be a date: %q", rawSoldAt)
	}
	if ok {
		sold = true
	}

	return &dto.CreateItemInput{
		ItemType:      itemType,
		Name:          name,
		Specification: h.get(rec, colSpecification),
		Designer:      h.get(rec, colDesigner),
		Quantity:      qty,
		CostPrice:     cost,
		ListPrice:     list,
		IsSold:        sold,
		SoldAt:        soldAt,
		Notes:         h.get(rec, colNotes),
	}, nil
}
