package model

import (
	"github.com/deppfellow/menu-api/internal/validation"
)

// Section is a part of a restaurant menu. Items reference it by id but do
// not own it.
type Section struct {
	BaseWithUpdatedAt
	Name         string `json:"name" db:"name"`
	RestaurantID int64  `json:"restaurant_id" db:"restaurant_id"`
	UserID       int64  `json:"user_id" db:"user_id"`
}

// SectionFields is a complete set of values for a new section.
type SectionFields struct {
	Name         string
	RestaurantID int64
	UserID       int64
}

// SectionPatch changes only the non-nil fields of a section.
type SectionPatch struct {
	Name         *string
	RestaurantID *int64
	UserID       *int64
}

// Empty reports whether the patch changes nothing.
func (p SectionPatch) Empty() bool {
	return p.Name == nil && p.RestaurantID == nil && p.UserID == nil
}

// Apply returns s with the patch applied.
func (p SectionPatch) Apply(s Section) Section {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.RestaurantID != nil {
		s.RestaurantID = *p.RestaurantID
	}
	if p.UserID != nil {
		s.UserID = *p.UserID
	}
	return s
}

// SectionPayload is a section embedded in an item write. Every field is
// optional on the wire: a payload that creates a section is checked with
// Missing, one that patches an existing section is not.
type SectionPayload struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	RestaurantID *int64  `json:"restaurant_id" validate:"omitempty,gt=0"`
	UserID       *int64  `json:"user_id" validate:"omitempty,gt=0"`
}

// WithUserID returns a copy of p owned by userID.
func (p SectionPayload) WithUserID(userID int64) *SectionPayload {
	p.UserID = Int64(userID)
	return &p
}

// Missing lists the fields a new section needs but p lacks. Field names
// are prefixed, e.g. "section.name".
func (p SectionPayload) Missing(prefix string) validation.CustomValidationErrors {
	var missing validation.CustomValidationErrors
	if p.Name == nil {
		missing = append(missing, validation.CustomValidationError{Field: prefix + "name", Message: "is required"})
	}
	if p.RestaurantID == nil {
		missing = append(missing, validation.CustomValidationError{Field: prefix + "restaurant_id", Message: "is required"})
	}
	if p.UserID == nil {
		missing = append(missing, validation.CustomValidationError{Field: prefix + "user_id", Message: "is required"})
	}
	return missing
}

// Fields converts a complete payload. Callers check Missing first.
func (p SectionPayload) Fields() SectionFields {
	var f SectionFields
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.RestaurantID != nil {
		f.RestaurantID = *p.RestaurantID
	}
	if p.UserID != nil {
		f.UserID = *p.UserID
	}
	return f
}

// Patch converts the payload into a partial update.
func (p SectionPayload) Patch() SectionPatch {
	return SectionPatch{
		Name:         p.Name,
		RestaurantID: p.RestaurantID,
		UserID:       p.UserID,
	}
}

// ----------------------------------------------------------------------------

// CreateSectionRequest creates a section on its own.
type CreateSectionRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	RestaurantID int64  `json:"restaurant_id" validate:"required,gt=0"`
	UserID       int64  `json:"user_id" validate:"required,gt=0"`
}

func (r *CreateSectionRequest) Validate() error {
	return validation.Struct(r)
}

func (r *CreateSectionRequest) Fields() SectionFields {
	return SectionFields{Name: r.Name, RestaurantID: r.RestaurantID, UserID: r.UserID}
}

// GetSectionRequest addresses one section.
type GetSectionRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

func (r *GetSectionRequest) Validate() error {
	return validation.Struct(r)
}
