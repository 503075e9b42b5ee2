// Package handler is the HTTP layer. Handlers receive bound and validated
// requests from the generic pipeline in base.go, call the service layer
// and shape the response with the serializer package.
package handler

import (
	"github.com/deppfellow/menu-api/internal/server"
	"github.com/deppfellow/menu-api/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Item    *ItemHandler
	Section *SectionHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Item:    NewItemHandler(s, services),
		Section: NewSectionHandler(s, services.Section),
	}
}
