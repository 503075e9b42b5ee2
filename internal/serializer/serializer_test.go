package serializer

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/deppfellow/menu-api/internal/lib/pagination"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem_FlattensFieldsAndAddsUser(t *testing.T) {
	item := &model.Item{Name: "Soup", Rating: 4, SectionID: model.Int64(3), UserID: 9}
	item.ID = 7

	raw, err := json.Marshal(NewItem(item, "user_abc"))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.EqualValues(t, 7, body["id"])
	assert.Equal(t, "Soup", body["name"])
	assert.EqualValues(t, 3, body["section_id"])
	assert.Equal(t, "user_abc", body["user"])
	assert.Contains(t, body, "archive_status")
}

func TestNewItem_AnonymousUserIsNull(t *testing.T) {
	raw, err := json.Marshal(NewItem(&model.Item{Name: "Soup"}, ""))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	v, ok := body["user"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestNewNestedItem(t *testing.T) {
	section := &model.Section{Name: "Mains", RestaurantID: 1, UserID: 9}
	section.ID = 3
	write := &service.NestedWrite{
		Item:    &model.Item{Name: "Soup", SectionID: model.Int64(3), UserID: 9},
		Section: section,
		Outcome: service.SectionCreated,
	}

	raw, err := json.Marshal(NewNestedItem(write, ""))
	require.NoError(t, err)

	var body struct {
		Name    string `json:"name"`
		Section struct {
			ID     int64 `json:"id"`
			Name   string
			UserID int64 `json:"user_id"`
		} `json:"section"`
		SectionOutcome string `json:"section_outcome"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Soup", body.Name)
	assert.EqualValues(t, 3, body.Section.ID)
	assert.EqualValues(t, 9, body.Section.UserID)
	assert.Equal(t, "created", body.SectionOutcome)
}

func TestNewItemPage(t *testing.T) {
	base, _ := url.Parse("http://localhost/api/v1/item?name=so&page=2")
	page := &service.ItemPage{
		Items:   []model.Item{{Name: "Soup"}},
		Count:   3,
		Request: pagination.Request{Page: 2, Size: 1},
	}

	out := NewItemPage(base, page, "")

	assert.Equal(t, 3, out.Count)
	require.Len(t, out.Results, 1)
	require.NotNil(t, out.Next)
	require.NotNil(t, out.Previous)
	assert.Equal(t, "http://localhost/api/v1/item?name=so&page=3", *out.Next)
	assert.Equal(t, "http://localhost/api/v1/item?name=so", *out.Previous)
}
