package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/menu-api/internal/server"
)

// AuthService configures the Clerk SDK used to verify session tokens.
type AuthService struct {
	server  *server.Server
	Enabled bool
}

func NewAuthService(s *server.Server) *AuthService {
	enabled := s.Config.Auth.Enabled()
	if enabled {
		clerk.SetKey(s.Config.Auth.SecretKey)
	}
	return &AuthService{
		server:  s,
		Enabled: enabled,
	}
}
