package item

import "github.com/fekuna/omnipos-inventory-service/internal/changelog"

// FieldLabels are the audited item fields in display order. Designer is free
// text and not audited.
var FieldLabels = []changelog.FieldLabel{
	{Field: "name", Label: "名前"},
	{Field: "specification", Label: "仕様"},
	{Field: "quantity", Label: "数量"},
	{Field: "costPrice", Label: "原価"},
	{Field: "listPrice", Label: "定価"},
	{Field: "manufacturer", Label: "メーカー"},
	{Field: "category", Label: "カテゴリ"},
	{Field: "location", Label: "保管場所"},
	{Field: "unit", Label: "単位"},
	{Field: "tags", Label: "タグ"},
	{Field: "isSold", Label: "売約済"},
	{Field: "soldAt", Label: "売約日"},
	{Field: "notes", Label: "備考"},
}
