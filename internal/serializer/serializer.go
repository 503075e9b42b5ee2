// Package serializer shapes entities into API response bodies.
package serializer

import (
	"net/url"

	"github.com/deppfellow/menu-api/internal/lib/pagination"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/service"
)

// Item is the display form of an item. User is the id of the caller, nil
// for anonymous requests.
type Item struct {
	model.Item
	User *string `json:"user"`
}

// NestedItem is returned by item writes and embeds the item's section.
type NestedItem struct {
	Item
	Section *model.Section `json:"section"`
	// SectionOutcome says whether the section was created, updated,
	// linked or left unchanged by the write.
	SectionOutcome service.SectionOutcome `json:"section_outcome"`
}

// ItemRef is the body of the item action endpoints.
type ItemRef struct {
	ID int64 `json:"id"`
}

func currentUser(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

func NewItem(item *model.Item, userID string) Item {
	return Item{Item: *item, User: currentUser(userID)}
}

func NewItems(items []model.Item, userID string) []Item {
	out := make([]Item, len(items))
	for i := range items {
		out[i] = NewItem(&items[i], userID)
	}
	return out
}

func NewNestedItem(write *service.NestedWrite, userID string) NestedItem {
	return NestedItem{
		Item:           NewItem(write.Item, userID),
		Section:        write.Section,
		SectionOutcome: write.Outcome,
	}
}

// NewItemPage renders one page of a listing. base is the absolute URL of
// the current request.
func NewItemPage(base *url.URL, page *service.ItemPage, userID string) pagination.Page[Item] {
	return pagination.NewPage(base, page.Request, page.Count, NewItems(page.Items, userID))
}
