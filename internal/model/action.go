package model

import (
	"github.com/deppfellow/menu-api/internal/validation"
)

// ItemAction names a state change requested through the action endpoint.
type ItemAction string

const (
	ActionUnarchive ItemAction = "unarchive"
	ActionDelete    ItemAction = "delete"
)

// ItemActionRequest asks for an action to be applied to an item.
type ItemActionRequest struct {
	ID     int64  `param:"id" json:"-" validate:"required,gt=0"`
	Action string `json:"action" validate:"required"`
}

func (r *ItemActionRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	switch ItemAction(r.Action) {
	case ActionUnarchive:
		return nil
	case ActionDelete:
		return validation.CustomValidationErrors{
			{Field: "action", Message: "delete is not allowed"},
		}
	default:
		return validation.CustomValidationErrors{
			{Field: "action", Message: "unknown action"},
		}
	}
}
