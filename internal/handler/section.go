package handler

import (
	"github.com/deppfellow/menu-api/internal/model"
	"github.com/deppfellow/menu-api/internal/server"
	"github.com/deppfellow/menu-api/internal/service"
	"github.com/labstack/echo/v4"
)

type SectionHandler struct {
	Handler
	sectionService *service.SectionService
}

func NewSectionHandler(s *server.Server, sectionService *service.SectionService) *SectionHandler {
	return &SectionHandler{
		Handler:        NewHandler(s),
		sectionService: sectionService,
	}
}

func (h *SectionHandler) CreateSection(c echo.Context, req *model.CreateSectionRequest) (*model.Section, error) {
	return h.sectionService.Create(c.Request().Context(), req)
}

func (h *SectionHandler) GetSection(c echo.Context, req *model.GetSectionRequest) (*model.Section, error) {
	return h.sectionService.Get(c.Request().Context(), req.ID)
}
