package model

import (
	"errors"
	"strconv"
	"strings"

	"github.com/deppfellow/menu-api/internal/validation"
)

// Item is a menu entry. SectionID is nil when the item is not filed under
// any section.
type Item struct {
	BaseWithUpdatedAt
	Name          string  `json:"name" db:"name"`
	Description   string  `json:"description" db:"description"`
	Rating        float64 `json:"rating" db:"rating"`
	ArchiveStatus bool    `json:"archive_status" db:"archive_status"`
	SectionID     *int64  `json:"section_id" db:"section_id"`
	UserID        int64   `json:"user_id" db:"user_id"`
}

// ItemFields is a complete set of values for a new item.
type ItemFields struct {
	Name          string
	Description   string
	Rating        float64
	ArchiveStatus bool
	SectionID     *int64
	UserID        int64
}

// ItemPatch changes only the non-nil fields of an item.
type ItemPatch struct {
	Name          *string
	Description   *string
	Rating        *float64
	ArchiveStatus *bool
	SectionID     *int64
	UserID        *int64
}

// Apply returns it with the patch applied.
func (p ItemPatch) Apply(it Item) Item {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Rating != nil {
		it.Rating = *p.Rating
	}
	if p.ArchiveStatus != nil {
		it.ArchiveStatus = *p.ArchiveStatus
	}
	if p.SectionID != nil {
		it.SectionID = Int64(*p.SectionID)
	}
	if p.UserID != nil {
		it.UserID = *p.UserID
	}
	return it
}

// Good ratings are the inclusive range used by good_rating_filter.
const (
	GoodRatingMin = 3
	GoodRatingMax = 5
)

// ItemFilter narrows an item listing. Nil fields do not filter.
type ItemFilter struct {
	// Name matches case-insensitively anywhere in the item name.
	Name          string
	ArchiveStatus *bool
	// GoodRating restricts to ratings in [GoodRatingMin, GoodRatingMax].
	GoodRating bool
	Limit      int
	Offset     int
}

// Matches reports whether it passes every condition of the filter.
func (f ItemFilter) Matches(it Item) bool {
	if f.Name != "" && !containsFold(it.Name, f.Name) {
		return false
	}
	if f.ArchiveStatus != nil && it.ArchiveStatus != *f.ArchiveStatus {
		return false
	}
	if f.GoodRating && (it.Rating < GoodRatingMin || it.Rating > GoodRatingMax) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ----------------------------------------------------------------------------

// InjectSectionOwner copies the item owner into a nested section payload,
// replacing any user_id the client sent. It returns a new payload and
// leaves section untouched. A zero userID or a nil section returns section
// as is.
func InjectSectionOwner(userID int64, section *SectionPayload) *SectionPayload {
	if userID == 0 || section == nil {
		return section
	}
	return section.WithUserID(userID)
}

// CreateItemRequest creates an item together with its section. Exactly one
// of Section (create a new section) or SectionID (link an existing one)
// must be given.
type CreateItemRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	Description   string          `json:"description"`
	Rating        float64         `json:"rating"`
	ArchiveStatus bool            `json:"archive_status"`
	UserID        int64           `json:"user_id" validate:"required,gt=0"`
	Section       *SectionPayload `json:"section"`
	SectionID     *int64          `json:"section_id" validate:"omitempty,gt=0"`
}

// Normalize runs the pre-validation transforms on a copy of r.
func (r *CreateItemRequest) Normalize() *CreateItemRequest {
	out := *r
	out.Section = InjectSectionOwner(r.UserID, r.Section)
	return &out
}

func (r *CreateItemRequest) Validate() error {
	err := validation.Struct(r)

	var custom validation.CustomValidationErrors
	switch {
	case r.Section == nil && r.SectionID == nil:
		custom = append(custom, validation.CustomValidationError{Field: "section", Message: "is required"})
	case r.Section != nil && r.SectionID != nil:
		custom = append(custom, validation.CustomValidationError{Field: "section_id", Message: "cannot be combined with section"})
	case r.Section != nil:
		custom = append(custom, r.Section.Missing("section.")...)
	}

	return joinValidation(err, custom)
}

// Fields converts the item part of the request. SectionID is filled by the
// reconciler once the section exists.
func (r *CreateItemRequest) Fields() ItemFields {
	return ItemFields{
		Name:          r.Name,
		Description:   r.Description,
		Rating:        r.Rating,
		ArchiveStatus: r.ArchiveStatus,
		SectionID:     r.SectionID,
		UserID:        r.UserID,
	}
}

// UpdateItemRequest replaces an item's name and owner and optionally its
// other fields. A nested Section patches the item's current section, or
// creates one when the item has none.
type UpdateItemRequest struct {
	ID            int64           `param:"id" json:"-" validate:"required,gt=0"`
	Name          string          `json:"name" validate:"required,max=200"`
	Description   *string         `json:"description"`
	Rating        *float64        `json:"rating"`
	ArchiveStatus *bool           `json:"archive_status"`
	UserID        int64           `json:"user_id" validate:"required,gt=0"`
	Section       *SectionPayload `json:"section"`
	SectionID     *int64          `json:"section_id" validate:"omitempty,gt=0"`
}

func (r *UpdateItemRequest) Normalize() *UpdateItemRequest {
	out := *r
	out.Section = InjectSectionOwner(r.UserID, r.Section)
	return &out
}

func (r *UpdateItemRequest) Validate() error {
	err := validation.Struct(r)

	var custom validation.CustomValidationErrors
	if r.Section != nil && r.SectionID != nil {
		custom = append(custom, validation.CustomValidationError{Field: "section_id", Message: "cannot be combined with section"})
	}

	return joinValidation(err, custom)
}

// Patch converts the item part of the request.
func (r *UpdateItemRequest) Patch() ItemPatch {
	return ItemPatch{
		Name:          String(r.Name),
		Description:   r.Description,
		Rating:        r.Rating,
		ArchiveStatus: r.ArchiveStatus,
		SectionID:     r.SectionID,
		UserID:        Int64(r.UserID),
	}
}

// GetItemRequest addresses one item.
type GetItemRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

func (r *GetItemRequest) Validate() error {
	return validation.Struct(r)
}

// ListItemsRequest carries the listing filters and page selection. The
// boolean filters stay strings so malformed values are reported instead
// of silently ignored.
type ListItemsRequest struct {
	Name             string `query:"name" validate:"omitempty,max=200"`
	ArchiveStatus    string `query:"archive_status" validate:"omitempty,boolean"`
	GoodRatingFilter string `query:"good_rating_filter" validate:"omitempty,boolean"`
	Page             int    `query:"page" validate:"omitempty,gte=1"`
	PageSize         int    `query:"page_size" validate:"omitempty,gte=1"`
}

func (r *ListItemsRequest) Validate() error {
	return validation.Struct(r)
}

// Filter converts the query into an ItemFilter without pagination.
func (r *ListItemsRequest) Filter() ItemFilter {
	f := ItemFilter{Name: r.Name}
	if v, err := strconv.ParseBool(r.ArchiveStatus); err == nil {
		f.ArchiveStatus = &v
	}
	if v, err := strconv.ParseBool(r.GoodRatingFilter); err == nil {
		f.GoodRating = v
	}
	return f
}

func joinValidation(err error, custom validation.CustomValidationErrors) error {
	if len(custom) == 0 {
		return err
	}
	return errors.Join(err, custom)
}
