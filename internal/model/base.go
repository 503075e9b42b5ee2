// Package model holds the menu entities and the request payloads that
// create or change them.
package model

import "time"

// Base carries the columns every table has.
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BaseWithUpdatedAt is Base for mutable tables.
type BaseWithUpdatedAt struct {
	Base
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
