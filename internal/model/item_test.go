package model

import (
	"testing"

	"github.com/deppfellow/menu-api/internal/errs"
	"github.com/deppfellow/menu-api/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)

	out := map[string]string{}
	for _, fe := range validation.FieldErrors(err) {
		out[fe.Field] = fe.Error
	}
	return out
}

func TestItemPatch_ApplyCopiesSectionID(t *testing.T) {
	sectionID := int64(3)
	it := ItemPatch{SectionID: &sectionID}.Apply(Item{Name: "Soup"})

	require.NotNil(t, it.SectionID)
	assert.NotSame(t, &sectionID, it.SectionID)

	sectionID = 4
	assert.Equal(t, int64(3), *it.SectionID)
}

func TestInjectSectionOwner(t *testing.T) {
	t.Run("fills a missing owner", func(t *testing.T) {
		in := &SectionPayload{Name: String("Starters")}
		out := InjectSectionOwner(7, in)

		require.NotNil(t, out.UserID)
		assert.Equal(t, int64(7), *out.UserID)
		assert.Nil(t, in.UserID, "input must not be mutated")
	})

	t.Run("overrides a different owner", func(t *testing.T) {
		in := &SectionPayload{UserID: Int64(9)}
		out := InjectSectionOwner(7, in)

		assert.Equal(t, int64(7), *out.UserID)
		assert.Equal(t, int64(9), *in.UserID)
	})

	t.Run("no owner leaves payload alone", func(t *testing.T) {
		in := &SectionPayload{UserID: Int64(9)}
		assert.Same(t, in, InjectSectionOwner(0, in))
	})

	t.Run("no section", func(t *testing.T) {
		assert.Nil(t, InjectSectionOwner(7, nil))
	})
}

func TestCreateItemRequest_Normalize(t *testing.T) {
	req := &CreateItemRequest{Name: "Soup", UserID: 3, Section: &SectionPayload{Name: String("S"), RestaurantID: Int64(1)}}

	norm := req.Normalize()

	assert.NotSame(t, req, norm)
	assert.Nil(t, req.Section.UserID)
	assert.Equal(t, int64(3), *norm.Section.UserID)
	assert.NoError(t, norm.Validate())
}

func TestCreateItemRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  CreateItemRequest
		want map[string]string
	}{
		{
			name: "missing everything",
			req:  CreateItemRequest{},
			want: map[string]string{"name": "is required", "user_id": "is required", "section": "is required"},
		},
		{
			name: "name too long",
			req:  CreateItemRequest{Name: string(make([]byte, 201)), UserID: 1, SectionID: Int64(1)},
			want: map[string]string{"name": "must not exceed 200 characters"},
		},
		{
			name: "section and section_id",
			req: CreateItemRequest{Name: "x", UserID: 1, SectionID: Int64(1),
				Section: &SectionPayload{Name: String("s"), RestaurantID: Int64(1), UserID: Int64(1)}},
			want: map[string]string{"section_id": "cannot be combined with section"},
		},
		{
			name: "incomplete nested section",
			req:  CreateItemRequest{Name: "x", UserID: 1, Section: &SectionPayload{Name: String("")}},
			want: map[string]string{
				"section.name":          "must be at least 1 characters",
				"section.restaurant_id": "is required",
				"section.user_id":       "is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldErrors(t, tt.req.Validate())
			for field, msg := range tt.want {
				assert.Equal(t, msg, got[field], "field %s", field)
			}
		})
	}
}

func TestUpdateItemRequest_AllowsPartialSection(t *testing.T) {
	req := (&UpdateItemRequest{ID: 1, Name: "x", UserID: 2, Section: &SectionPayload{Name: String("Soups")}}).Normalize()
	assert.NoError(t, req.Validate())

	patch := req.Patch()
	assert.Equal(t, "x", *patch.Name)
	assert.Nil(t, patch.SectionID)
	assert.Nil(t, patch.Rating)
}

func TestItemActionRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ItemActionRequest{ID: 1, Action: "unarchive"}).Validate())

	got := fieldErrors(t, (&ItemActionRequest{ID: 1, Action: "delete"}).Validate())
	assert.Equal(t, "delete is not allowed", got["action"])

	got = fieldErrors(t, (&ItemActionRequest{ID: 1, Action: "explode"}).Validate())
	assert.Equal(t, "unknown action", got["action"])

	got = fieldErrors(t, (&ItemActionRequest{ID: 1}).Validate())
	assert.Equal(t, "is required", got["action"])
}

func TestListItemsRequest(t *testing.T) {
	req := &ListItemsRequest{Name: "soup", ArchiveStatus: "false", GoodRatingFilter: "1"}
	require.NoError(t, req.Validate())

	f := req.Filter()
	assert.Equal(t, "soup", f.Name)
	require.NotNil(t, f.ArchiveStatus)
	assert.False(t, *f.ArchiveStatus)
	assert.True(t, f.GoodRating)

	got := fieldErrors(t, (&ListItemsRequest{ArchiveStatus: "maybe"}).Validate())
	assert.Equal(t, "must be a valid boolean", got["archive_status"])
}

func TestItemFilter_Matches(t *testing.T) {
	soup := Item{Name: "Tomato Soup", Rating: 4}
	pie := Item{Name: "Pie", Rating: 6, ArchiveStatus: true}

	assert.True(t, ItemFilter{Name: "soup"}.Matches(soup))
	assert.False(t, ItemFilter{Name: "soup"}.Matches(pie))
	assert.True(t, ItemFilter{GoodRating: true}.Matches(soup))
	assert.False(t, ItemFilter{GoodRating: true}.Matches(pie))
	assert.True(t, ItemFilter{ArchiveStatus: Bool(true)}.Matches(pie))
	assert.True(t, ItemFilter{}.Matches(pie))
}

func TestValidationErrorsBecomeHTTP400(t *testing.T) {
	err := validation.ToHTTPError((&CreateItemRequest{}).Validate())

	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok)
	assert.Equal(t, 400, httpErr.Status)
	assert.NotEmpty(t, httpErr.Errors)
}
