package repository

import (
	"fmt"

	"github.com/deppfellow/menu-api/internal/config"
	"github.com/deppfellow/menu-api/internal/server"
)

// Repositories is the container handed to the service layer.
type Repositories struct {
	Store Store
}

// NewRepositories selects the store implementation from config.
func NewRepositories(s *server.Server) (*Repositories, error) {
	switch s.Config.Store.Driver {
	case config.StoreDriverMemory:
		s.Logger.Warn().Msg("using in-memory store, data is lost on restart")
		return &Repositories{Store: NewMemoryStore()}, nil
	case config.StoreDriverPostgres, "":
		if s.DB == nil {
			return nil, fmt.Errorf("postgres store selected but no database connection")
		}
		return &Repositories{Store: NewPostgresStore(s.DB.Pool)}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", s.Config.Store.Driver)
	}
}
