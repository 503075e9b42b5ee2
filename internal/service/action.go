package service

import (
	"github.com/deppfellow/menu-api/internal/errs"
	"github.com/deppfellow/menu-api/internal/model"
)

// actionFunc computes the change an action makes to an item.
type actionFunc func(item model.Item) model.ItemPatch

// itemActions lists every action that may be applied. Refused actions,
// like delete, have no entry.
var itemActions = map[model.ItemAction]actionFunc{
	model.ActionUnarchive: func(model.Item) model.ItemPatch {
		return model.ItemPatch{ArchiveStatus: model.Bool(false)}
	},
}

func lookupAction(action string) (actionFunc, error) {
	if fn, ok := itemActions[model.ItemAction(action)]; ok {
		return fn, nil
	}

	msg := "unknown action"
	if model.ItemAction(action) == model.ActionDelete {
		msg = "delete is not allowed"
	}
	return nil, errs.NewValidationError(errs.FieldError{Field: "action", Error: msg})
}
