package model

import "time"

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Actor identifies who performed a mutation. It is passed explicitly to every
// write path so audit entries never depend on request-global state.
type Actor struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}
