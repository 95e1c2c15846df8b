package dto

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

type ItemFilters struct {
	Search         string
	CategoryID     string
	ManufacturerID string
	LocationID     string
	TagIDs         []string // matches items carrying any of the tags
	IncludeSold    bool
	ItemType       *model.ItemType // nil matches every type
	SortBy         string          // name, sku, quantity, costPrice, listPrice, createdAt, updatedAt, soldAt
	SortOrder      string          // asc, desc
	Page           int
	Limit          int
}

// Validate rejects out-of-range pagination. Values are never clamped.
func (f *ItemFilters) Validate(maxPageSize int) error {
	var fe apperror.FieldErrors
	if f.Page < 1 {
		fe.Add("page", "must be at least 1")
	}
	if f.Limit < 1 || f.Limit > maxPageSize {
		fe.Add("limit", "must be between 1 and "+strconv.Itoa(maxPageSize))
	}
	return fe.Err("invalid pagination")
}

func (f *ItemFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// FiltersFromQuery reads list filters from URL query values. Missing page and
// limit default to 1 and defaultLimit.
func FiltersFromQuery(q url.Values, defaultLimit int) (*ItemFilters, error) {
	f := &ItemFilters{
		Search:         strings.TrimSpace(q.Get("search")),
		CategoryID:     q.Get("categoryId"),
		ManufacturerID: q.Get("manufacturerId"),
		LocationID:     q.Get("locationId"),
		SortBy:         q.Get("sortBy"),
		SortOrder:      q.Get("sortOrder"),
		Page:           DefaultPage,
		Limit:          defaultLimit,
	}

	var fe apperror.FieldErrors
	for _, raw := range q["tagIds"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.TagIDs = append(f.TagIDs, id)
			}
		}
	}
	if raw := q.Get("includeSold"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fe.Add("includeSold", "must be a boolean")
		}
		f.IncludeSold = v
	}
	if raw := q.Get("itemType"); raw != "" {
		t := model.ItemType(strings.ToUpper(raw))
		if !t.Valid() {
			fe.Add("itemType", "must be PRODUCT or CONSIGNMENT")
		} else {
			f.ItemType = &t
		}
	}
	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fe.Add("page", "must be an integer")
		}
		f.Page = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fe.Add("limit", "must be an integer")
		}
		f.Limit = v
	}
	if err := fe.Err("invalid query"); err != nil {
		return nil, err
	}
	return f, nil
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
