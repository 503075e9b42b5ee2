package handler

import (
	"net/url"

	"github.com/deppfellow/menu-api/internal/lib/pagination"
	"github.com/deppfellow/menu-api/internal/middleware"
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/serializer"
	"github.com/deppfellow/menu-api/internal/server"
	"github.com/deppfellow/menu-api/internal/service"
	"github.com/labstack/echo/v4"
)

type ItemHandler struct {
	Handler
	itemService    *service.ItemService
	listPaginator  pagination.Paginator
	smallPaginator pagination.Paginator
}

func NewItemHandler(s *server.Server, services *service.Services) *ItemHandler {
	return &ItemHandler{
		Handler:        NewHandler(s),
		itemService:    services.Item,
		listPaginator:  services.ListPaginator,
		smallPaginator: services.SmallPaginator,
	}
}

func (h *ItemHandler) ListItems(c echo.Context, req *model.ListItemsRequest) (*pagination.Page[serializer.Item], error) {
	return h.list(c, req, h.listPaginator)
}

// ListSmallItems is ListItems with pages of at most two items.
func (h *ItemHandler) ListSmallItems(c echo.Context, req *model.ListItemsRequest) (*pagination.Page[serializer.Item], error) {
	return h.list(c, req, h.smallPaginator)
}

func (h *ItemHandler) list(c echo.Context, req *model.ListItemsRequest, p pagination.Paginator) (*pagination.Page[serializer.Item], error) {
	page, err := h.itemService.List(c.Request().Context(), req, p)
	if err != nil {
		return nil, err
	}

	out := serializer.NewItemPage(requestURL(c), page, middleware.GetUserID(c))
	return &out, nil
}

func (h *ItemHandler) CreateItem(c echo.Context, req *model.CreateItemRequest) (*serializer.NestedItem, error) {
	write, err := h.itemService.Create(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}

	out := serializer.NewNestedItem(write, middleware.GetUserID(c))
	return &out, nil
}

func (h *ItemHandler) GetItem(c echo.Context, req *model.GetItemRequest) (*serializer.Item, error) {
	item, err := h.itemService.Get(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}

	out := serializer.NewItem(item, middleware.GetUserID(c))
	return &out, nil
}

func (h *ItemHandler) UpdateItem(c echo.Context, req *model.UpdateItemRequest) (*serializer.NestedItem, error) {
	write, err := h.itemService.Update(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}

	out := serializer.NewNestedItem(write, middleware.GetUserID(c))
	return &out, nil
}

func (h *ItemHandler) DeleteItem(c echo.Context, req *model.GetItemRequest) error {
	return h.itemService.Delete(c.Request().Context(), req.ID)
}

// GetItemAction confirms the item exists and echoes its id.
func (h *ItemHandler) GetItemAction(c echo.Context, req *model.GetItemRequest) (*serializer.ItemRef, error) {
	item, err := h.itemService.Get(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}
	return &serializer.ItemRef{ID: item.ID}, nil
}

func (h *ItemHandler) ApplyItemAction(c echo.Context, req *model.ItemActionRequest) (*serializer.ItemRef, error) {
	item, err := h.itemService.ApplyAction(c.Request().Context(), req)
	if err != nil {
		return nil, err
	}
	return &serializer.ItemRef{ID: item.ID}, nil
}

// requestURL rebuilds the absolute URL of the current request for
// pagination links.
func requestURL(c echo.Context) *url.URL {
	r := c.Request()
	return &url.URL{
		Scheme:   c.Scheme(),
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}
