package api

import (
	"net/netip"

	"github.com/okian/portfolio/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllowedOrigin sets Access-Control-Allow-Origin on /api routes.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.origin = origin
		}
	}
}

// WithJWTSecret enables the admin listing, guarded by HS256 tokens signed
// with secret.
func WithJWTSecret(secret string) Option {
	return func(s *Server) {
		s.jwtSecret = secret
	}
}

// WithTrustedProxies lets requests arriving from these networks name the
// client through X-Forwarded-For. Without it the remote address is used.
func WithTrustedProxies(prefixes []netip.Prefix) Option {
	return func(s *Server) {
		s.clientKey = ClientKey(prefixes)
	}
}
