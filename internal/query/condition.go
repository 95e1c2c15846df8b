package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition rendered with positional
// (?) placeholders. Repositories rebind the final statement for their driver.
type Condition interface {
	// SQL returns the SQL fragment and its arguments in placeholder order.
	SQL() (string, []any)
}

type eqCondition struct {
	field string
	value any
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("i.category_id", "c1") generates "i.category_id = ?"
func Eq(field string, value any) Condition {
	return &eqCondition{field: field, value: value}
}

func (c *eqCondition) SQL() (string, []any) {
	return fmt.Sprintf("%s = ?", c.field), []any{c.value}
}

type inCondition struct {
	field  string
	values []any
}

// In matches field against any of values. An empty list matches nothing.
func In[T any](field string, values []T) Condition {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return &inCondition{field: field, values: vals}
}

func (c *inCondition) SQL() (string, []any) {
	if len(c.values) == 0 {
		return "1 = 0", nil
	}
	return fmt.Sprintf("%s IN (%s)", c.field, Placeholders(len(c.values))), c.values
}

type isNullCondition struct {
	field string
}

func IsNull(field string) Condition {
	return &isNullCondition{field: field}
}

func (c *isNullCondition) SQL() (string, []any) {
	return fmt.Sprintf("%s IS NULL", c.field), nil
}

type likeAnyCondition struct {
	fields []string
	term   string
}

// LikeAny is a case-insensitive substring match of term against any of fields.
// LIKE wildcards inside term are matched literally.
func LikeAny(term string, fields ...string) Condition {
	return &likeAnyCondition{fields: fields, term: term}
}

func (c *likeAnyCondition) SQL() (string, []any) {
	pattern := "%" + escapeLike(strings.ToLower(c.term)) + "%"
	parts := make([]string, len(c.fields))
	args := make([]any, len(c.fields))
	for i, f := range c.fields {
		parts[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, f)
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

type existsCondition struct {
	subquery string
	args     []any
}

// Exists wraps a correlated sub-select written with ? placeholders.
func Exists(subquery string, args ...any) Condition {
	return &existsCondition{subquery: subquery, args: args}
}

func (c *existsCondition) SQL() (string, []any) {
	return fmt.Sprintf("EXISTS (%s)", c.subquery), c.args
}

// Placeholders returns "?, ?, ..." with n markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
