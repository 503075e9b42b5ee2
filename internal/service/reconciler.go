package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/menu-api/internal/errs"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/repository"
	"github.com/deppfellow/menu-api/internal/sqlerr"
	"github.com/deppfellow/menu-api/internal/validation"
)

// SectionOutcome says what a nested write did to the item's section.
type SectionOutcome string

const (
	SectionCreated   SectionOutcome = "created"
	SectionUpdated   SectionOutcome = "updated"
	SectionLinked    SectionOutcome = "linked"
	SectionUnchanged SectionOutcome = "unchanged"
)

// NestedWrite is the result of a successful item write. Section is nil
// only when the item has no section.
type NestedWrite struct {
	Item    *model.Item
	Section *model.Section
	Outcome SectionOutcome
}

// NestedValidationError reports why the nested section of an item write
// was rejected. Field names carry the nested path, e.g. "section.name".
//
// It converts to a 400 *errs.HTTPError through errors.As, so the global
// error handler renders it like any other validation failure.
type NestedValidationError struct {
	Field  string
	Errors []errs.FieldError
}

func (e *NestedValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Error
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, strings.Join(parts, "; "))
}

func (e *NestedValidationError) As(target any) bool {
	if t, ok := target.(**errs.HTTPError); ok {
		*t = errs.NewValidationError(e.Errors...)
		return true
	}
	return false
}

func invalidPK(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// Reconciler writes an item and its embedded section as one unit. Either
// both records reach the store or neither does.
type Reconciler struct {
	store repository.Store
}

func NewReconciler(store repository.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Create persists the nested section first, attaches its id to the item
// and then persists the item. With a flat section_id the existing section
// is linked instead.
func (r *Reconciler) Create(ctx context.Context, req *model.CreateItemRequest) (*NestedWrite, error) {
	var out NestedWrite

	err := r.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := requireUser(ctx, tx, "user_id", req.UserID); err != nil {
			return err
		}

		fields := req.Fields()

		switch {
		case req.Section != nil:
			section, err := createSection(ctx, tx, *req.Section)
			if err != nil {
				return err
			}
			fields.SectionID = &section.ID
			out.Section, out.Outcome = section, SectionCreated

		case req.SectionID != nil:
			section, err := linkSection(ctx, tx, *req.SectionID)
			if err != nil {
				return err
			}
			out.Section, out.Outcome = section, SectionLinked
		}

		item, err := tx.CreateItem(ctx, fields)
		if err != nil {
			return err
		}
		out.Item = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// Update changes the item in place. A nested section patches the section
// the item already references, or is created and attached when there is
// none.
func (r *Reconciler) Update(ctx context.Context, req *model.UpdateItemRequest) (*NestedWrite, error) {
	var out NestedWrite

	err := r.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.GetItem(ctx, req.ID)
		if err != nil {
			return err
		}

		if err := requireUser(ctx, tx, "user_id", req.UserID); err != nil {
			return err
		}

		patch := req.Patch()

		switch {
		case req.Section != nil && current.SectionID != nil:
			section, outcome, err := patchSection(ctx, tx, *current.SectionID, *req.Section)
			if err != nil {
				return err
			}
			out.Section, out.Outcome = section, outcome

		case req.Section != nil:
			section, err := createSection(ctx, tx, *req.Section)
			if err != nil {
				return err
			}
			patch.SectionID = &section.ID
			out.Section, out.Outcome = section, SectionCreated

		case req.SectionID != nil:
			section, err := linkSection(ctx, tx, *req.SectionID)
			if err != nil {
				return err
			}
			out.Section, out.Outcome = section, SectionLinked

		default:
			out.Outcome = SectionUnchanged
			if current.SectionID != nil {
				if out.Section, err = tx.GetSection(ctx, *current.SectionID); err != nil {
					return err
				}
			}
		}

		item, err := tx.UpdateItem(ctx, current.ID, patch)
		if err != nil {
			return err
		}
		out.Item = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// CreateSection validates the references of a standalone section and
// stores it.
func (r *Reconciler) CreateSection(ctx context.Context, fields model.SectionFields) (*model.Section, error) {
	var out *model.Section
	err := r.store.WithinTx(ctx, func(tx repository.Store) error {
		fieldErrors, err := sectionRefErrors(ctx, tx, "", &fields.RestaurantID, &fields.UserID)
		if err != nil {
			return err
		}
		if len(fieldErrors) > 0 {
			return errs.NewValidationError(fieldErrors...)
		}

		out, err = tx.CreateSection(ctx, fields)
		return err
	})
	return out, err
}

const sectionPrefix = "section."

func createSection(ctx context.Context, tx repository.Store, payload model.SectionPayload) (*model.Section, error) {
	fieldErrors := validation.FieldErrors(payload.Missing(sectionPrefix))

	refErrors, err := sectionRefErrors(ctx, tx, sectionPrefix, payload.RestaurantID, payload.UserID)
	if err != nil {
		return nil, err
	}
	fieldErrors = append(fieldErrors, refErrors...)

	if len(fieldErrors) > 0 {
		return nil, &NestedValidationError{Field: "section", Errors: fieldErrors}
	}

	return tx.CreateSection(ctx, payload.Fields())
}

func patchSection(ctx context.Context, tx repository.Store, id int64, payload model.SectionPayload) (*model.Section, SectionOutcome, error) {
	refErrors, err := sectionRefErrors(ctx, tx, sectionPrefix, payload.RestaurantID, payload.UserID)
	if err != nil {
		return nil, "", err
	}
	if len(refErrors) > 0 {
		return nil, "", &NestedValidationError{Field: "section", Errors: refErrors}
	}

	patch := payload.Patch()
	if patch.Empty() {
		section, err := tx.GetSection(ctx, id)
		return section, SectionUnchanged, err
	}

	section, err := tx.UpdateSection(ctx, id, patch)
	return section, SectionUpdated, err
}

func linkSection(ctx context.Context, tx repository.Store, id int64) (*model.Section, error) {
	section, err := tx.GetSection(ctx, id)
	if sqlerr.IsNotFound(err) {
		return nil, errs.NewValidationError(errs.FieldError{Field: "section_id", Error: invalidPK(id)})
	}
	return section, err
}

func requireUser(ctx context.Context, tx repository.Store, field string, id int64) error {
	_, err := tx.GetUser(ctx, id)
	if sqlerr.IsNotFound(err) {
		return errs.NewValidationError(errs.FieldError{Field: field, Error: invalidPK(id)})
	}
	return err
}

// sectionRefErrors checks the given section references. Nil ids are not
// checked.
func sectionRefErrors(ctx context.Context, tx repository.Store, prefix string, restaurantID, userID *int64) ([]errs.FieldError, error) {
	var fieldErrors []errs.FieldError

	if restaurantID != nil {
		_, err := tx.GetRestaurant(ctx, *restaurantID)
		switch {
		case sqlerr.IsNotFound(err):
			fieldErrors = append(fieldErrors, errs.FieldError{Field: prefix + "restaurant_id", Error: invalidPK(*restaurantID)})
		case err != nil:
			return nil, err
		}
	}

	if userID != nil {
		_, err := tx.GetUser(ctx, *userID)
		switch {
		case sqlerr.IsNotFound(err):
			fieldErrors = append(fieldErrors, errs.FieldError{Field: prefix + "user_id", Error: invalidPK(*userID)})
		case err != nil:
			return nil, err
		}
	}

	return fieldErrors, nil
}
