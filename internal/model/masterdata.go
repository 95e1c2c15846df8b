package model

// MasterKind names one family of reference data.
type MasterKind string

const (
	KindManufacturer MasterKind = "manufacturer"
	KindCategory     MasterKind = "category"
	KindLocation     MasterKind = "location"
	KindUnit         MasterKind = "unit"
	KindTag          MasterKind = "tag"
	KindMaterialType MasterKind = "material_type"
)

var MasterKinds = []MasterKind{KindManufacturer, KindCategory, KindLocation, KindUnit, KindTag, KindMaterialType}

func (k MasterKind) Valid() bool {
	for _, v := range MasterKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Table is the storage table for the kind. Only allow-listed kinds map to a table.
func (k MasterKind) Table() string {
	switch k {
	case KindManufacturer:
		return "manufacturers"
	case KindCategory:
		return "categories"
	case KindLocation:
		return "locations"
	case KindUnit:
		return "units"
	case KindTag:
		return "tags"
	case KindMaterialType:
		return "material_types"
	}
	return ""
}

// Ordered reports whether rows of the kind carry a manual sort order.
func (k MasterKind) Ordered() bool {
	return k == KindMaterialType
}

type MasterData struct {
	BaseModel
	Kind      MasterKind `db:"-" json:"kind"`
	Name      string     `db:"name" json:"name"`
	SortOrder *int       `db:"sort_order" json:"sortOrder,omitempty"`
}

func (m *MasterData) LogSubject() LogSubject {
	return LogSubject{
		EntityType: string(m.Kind),
		EntityID:   m.ID,
		EntityName: m.Name,
	}
}

func (m *MasterData) AuditSnapshot() map[string]any {
	return map[string]any{
		"name":      m.Name,
		"sortOrder": m.SortOrder,
	}
}
