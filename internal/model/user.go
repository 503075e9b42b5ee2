package model

// User is the creator of items and sections.
type User struct {
	Base
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`
}

// Restaurant groups sections.
type Restaurant struct {
	Base
	Name   string `json:"name" db:"name"`
	UserID *int64 `json:"user_id" db:"user_id"`
}
