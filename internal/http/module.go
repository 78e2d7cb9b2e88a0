// Package http holds the pieces shared by the router and the domain modules.
package http

import (
	"github.com/gin-gonic/gin"
)

// Module is a domain area (pricing, catalog, customers, appointments) that
// mounts its own routes.
type Module interface {
	// Name identifies the module in logs.
	Name() string
	// RegisterRoutes mounts the module's routes.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is handed to every module during route registration.
type RouterContext struct {
	// Engine is the root engine, for routes outside /api/v1.
	Engine *gin.Engine
	// V1 is the rate limited /api/v1 group.
	V1 *gin.RouterGroup
}
