package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

const EntityTypeItem = "item"

// FieldChange is one before/after pair rendered for display.
type FieldChange struct {
	Field string `json:"field"`
	Label string `json:"label"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// FieldChanges is stored as a JSON array; a nil value is stored as NULL.
type FieldChanges []FieldChange

func (fc FieldChanges) Value() (driver.Value, error) {
	if fc == nil {
		return nil, nil
	}
	b, err := json.Marshal([]FieldChange(fc))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (fc *FieldChanges) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*fc = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported changes column type %T", src)
	}
	var out []FieldChange
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*fc = out
	return nil
}

// LogSubject identifies the entity an audit entry is about.
type LogSubject struct {
	EntityType string
	EntityID   string
	EntityName string
	EntitySKU  *string
	ItemType   *ItemType
}

type ChangeLogEntry struct {
	ID         string       `db:"id" json:"id"`
	EntityType string       `db:"entity_type" json:"entityType"`
	EntityID   string       `db:"entity_id" json:"entityId"`
	EntityName string       `db:"entity_name" json:"entityName"`
	EntitySKU  *string      `db:"entity_sku" json:"entitySku"`
	Action     ChangeAction `db:"action" json:"action"`
	Changes    FieldChanges `db:"changes" json:"changes"`
	UserID     string       `db:"user_id" json:"userId"`
	UserName   string       `db:"user_name" json:"userName"`
	ItemType   *ItemType    `db:"item_type" json:"itemType"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}
