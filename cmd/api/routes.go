package main

import (
	"call-analytics/internal/auth"
	"call-analytics/internal/calls"
	"call-analytics/internal/httpapi"
	"call-analytics/internal/tenant"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, resolver *tenant.Resolver, sessions *auth.SessionManager, callService *calls.Service) {
	h := httpapi.Handlers{
		Calls:    callService,
		Tenants:  resolver,
		Sessions: sessions,
	}

	// public
	r.GET("/health", h.Health)

	// session exchange authenticates with the raw API key itself
	r.POST("/sessions", h.CreateSession)

	// Both call paths require an authenticated tenant: ingestion callers send
	// an API key header, the dashboard sends its session token. The store is
	// only ever called with the account id bound by the middleware.
	protected := r.Group("/")
	protected.Use(auth.RequireTenant(resolver, sessions))
	{
		protected.POST("/calls", h.SaveCall)
		protected.GET("/calls", h.ListCalls)
	}
}
