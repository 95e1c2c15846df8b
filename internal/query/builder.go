package query

import (
	"fmt"
	"strings"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

type orderTerm struct {
	column    string
	direction Direction
}

// Builder constructs SQL SELECT statements. Every method returns a copy, so a
// base builder can be shared by the count, page and id queries.
type Builder struct {
	table        string
	selectCols   []string
	joins        []string
	whereClauses []Condition
	orderBy      []orderTerm
	limitVal     int64
	offsetVal    int64
}

// From creates a new Builder for the specified table (an alias is allowed).
func From(table string) *Builder {
	return &Builder{table: table}
}

func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

// LeftJoin appends a raw "LEFT JOIN ..." clause.
func (b *Builder) LeftJoin(clause string) *Builder {
	nb := b.clone()
	nb.joins = append(nb.joins, "LEFT JOIN "+clause)
	return nb
}

// Where adds a WHERE condition. Multiple calls are combined with AND.
func (b *Builder) Where(condition Condition) *Builder {
	nb := b.clone()
	nb.whereClauses = append(nb.whereClauses, condition)
	return nb
}

// OrderBy appends a sort key; earlier keys take precedence.
func (b *Builder) OrderBy(column string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderTerm{column: column, direction: direction})
	return nb
}

func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limitVal = limit
	return nb
}

func (b *Builder) Offset(offset int64) *Builder {
	nb := b.clone()
	nb.offsetVal = offset
	return nb
}

// Count returns a builder for COUNT(*) over the same FROM, joins and WHERE,
// without ordering or pagination.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.selectCols = []string{"COUNT(*)"}
	nb.orderBy = nil
	nb.limitVal = 0
	nb.offsetVal = 0
	return nb
}

// Build returns the SQL text and its positional arguments.
func (b *Builder) Build() (string, []any) {
	var sql strings.Builder
	var args []any

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	for _, j := range b.joins {
		sql.WriteString(" ")
		sql.WriteString(j)
	}

	if len(b.whereClauses) > 0 {
		parts := make([]string, 0, len(b.whereClauses))
		for _, c := range b.whereClauses {
			fragment, condArgs := c.SQL()
			parts = append(parts, fragment)
			args = append(args, condArgs...)
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orderBy) > 0 {
		terms := make([]string, len(b.orderBy))
		for i, o := range b.orderBy {
			dir := "ASC"
			if o.direction == Desc {
				dir = "DESC"
			}
			terms[i] = o.column + " " + dir
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(terms, ", "))
	}

	if b.limitVal > 0 {
		sql.WriteString(" LIMIT ?")
		args = append(args, b.limitVal)
	}
	if b.offsetVal > 0 {
		sql.WriteString(" OFFSET ?")
		args = append(args, b.offsetVal)
	}

	return sql.String(), args
}

func (b *Builder) clone() *Builder {
	nb := &Builder{
		table:        b.table,
		selectCols:   make([]string, len(b.selectCols)),
		joins:        make([]string, len(b.joins)),
		whereClauses: make([]Condition, len(b.whereClauses)),
		orderBy:      make([]orderTerm, len(b.orderBy)),
		limitVal:     b.limitVal,
		offsetVal:    b.offsetVal,
	}
	copy(nb.selectCols, b.selectCols)
	copy(nb.joins, b.joins)
	copy(nb.whereClauses, b.whereClauses)
	copy(nb.orderBy, b.orderBy)
	return nb
}

// String returns a human-readable representation for debugging.
func (b *Builder) String() string {
	sql, args := b.Build()
	return fmt.Sprintf("SQL: %s\nArgs: %v", sql, args)
}
