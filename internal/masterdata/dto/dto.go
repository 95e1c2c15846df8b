package dto

import (
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
)

type MasterFilters struct {
	Search string
	Page   int
	Limit  int // zero lists everything
}

type MasterInput struct {
	Name      string `json:"name"`
	SortOrder *int   `json:"sortOrder"`
}

func (in *MasterInput) Validate() error {
	var fe apperror.FieldErrors
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		fe.Add("name", "is required")
	} else if len([]rune(in.Name)) > 100 {
		fe.Add("name", "must be at most 100 characters")
	}
	if in.SortOrder != nil && *in.SortOrder < 0 {
		fe.Add("sortOrder", "must not be negative")
	}
	return fe.Err("invalid master data")
}

type ReorderInput struct {
	IDs []string `json:"ids"`
}
