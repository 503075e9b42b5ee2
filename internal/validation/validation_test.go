package validation

import (
	"errors"
	"testing"

	"github.com/deppfellow/menu-api/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Name *string `json:"name" validate:"omitempty,min=2"`
}

type outer struct {
	ID    int64  `param:"id" json:"-" validate:"required"`
	Title string `json:"title" validate:"required,max=5"`
	Flag  string `query:"flag" validate:"omitempty,boolean"`
	Inner *inner `json:"inner"`
}

func (o *outer) Validate() error { return Struct(o) }

func TestFieldErrors_UsesWireNames(t *testing.T) {
	short := "x"
	err := (&outer{Title: "too long", Flag: "nope", Inner: &inner{Name: &short}}).Validate()
	require.Error(t, err)

	got := map[string]string{}
	for _, fe := range FieldErrors(err) {
		got[fe.Field] = fe.Error
	}

	assert.Equal(t, map[string]string{
		"id":         "is required",
		"title":      "must not exceed 5 characters",
		"flag":       "must be a valid boolean",
		"inner.name": "must be at least 2 characters",
	}, got)
}

func TestFieldErrors_JoinedCustomErrors(t *testing.T) {
	custom := CustomValidationErrors{{Field: "section", Message: "is required"}}
	err := errors.Join((&outer{ID: 1}).Validate(), custom)

	fields := FieldErrors(err)
	require.Len(t, fields, 2)
	assert.Equal(t, errs.FieldError{Field: "section", Error: "is required"}, fields[0])
	assert.Equal(t, "title", fields[1].Field)
}

func TestToHTTPError(t *testing.T) {
	err := ToHTTPError(CustomValidationErrors{{Field: "action", Message: "unknown action"}})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Status)
	assert.Equal(t, "Validation failed", httpErr.Message)
	msg, ok := httpErr.FieldMessage("action")
	assert.True(t, ok)
	assert.Equal(t, "unknown action", msg)
}

func TestToHTTPError_PassesHTTPErrorsThrough(t *testing.T) {
	original := errs.NewNotFoundError("gone", true, nil)
	assert.Same(t, original, ToHTTPError(original))
}

func TestCheck_Valid(t *testing.T) {
	assert.NoError(t, Check(&outer{ID: 1, Title: "ok"}))
}
