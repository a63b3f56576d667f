package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/frotalog/fleet-api/internal/auth"
	"github.com/frotalog/fleet-api/internal/config"
	"github.com/frotalog/fleet-api/internal/handler"
	"github.com/frotalog/fleet-api/internal/middleware"
)

// Handlers bundles everything Register needs to mount the API.
type Handlers struct {
	Auth        *handler.AuthHandler
	Trucks      *handler.TruckHandler
	Drivers     *handler.DriverHandler
	Fuel        *handler.FuelHandler
	Maintenance *handler.MaintenanceHandler
}

// Register mounts all routes on e. OptionalAuth runs before the rate
// limiter so authenticated requests are throttled per user rather than
// per IP; Protect is then applied to the routes that require a login.
func Register(e *echo.Echo, h Handlers, tokens *auth.TokenIssuer, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/health", handler.Health)

	api := e.Group("/api",
		middleware.OptionalAuth(tokens),
		middleware.RateLimit(rlCfg, rdb),
	)

	// Public auth endpoints.
	ag := api.Group("/auth")
	ag.POST("/register", h.Auth.Register)
	ag.POST("/login", h.Auth.Login)
	ag.POST("/refresh-token", h.Auth.Refresh)
	ag.POST("/logout", h.Auth.Logout)

	protect := middleware.Protect(tokens)

	ag.GET("/profile", h.Auth.Profile, protect)
	ag.PUT("/profile", h.Auth.UpdateProfile, protect)
	ag.POST("/change-password", h.Auth.ChangePassword, protect)

	trucks := api.Group("/caminhoes", protect)
	trucks.GET("", h.Trucks.List)
	trucks.POST("", h.Trucks.Create)
	trucks.GET("/:id", h.Trucks.Get)
	trucks.PUT("/:id", h.Trucks.Update)
	trucks.DELETE("/:id", h.Trucks.Delete)

	drivers := api.Group("/motoristas", protect)
	drivers.GET("", h.Drivers.List)
	drivers.POST("", h.Drivers.Create)
	drivers.GET("/:id", h.Drivers.Get)
	drivers.PUT("/:id", h.Drivers.Update)
	drivers.DELETE("/:id", h.Drivers.Delete)

	fuel := api.Group("/abastecimentos", protect)
	fuel.GET("", h.Fuel.List)
	fuel.POST("", h.Fuel.Create)
	fuel.GET("/truck/:truckId", h.Fuel.ByTruck)
	fuel.GET("/truck/:truckId/consumption", h.Fuel.Consumption)
	fuel.GET("/:id", h.Fuel.Get)

	maint := api.Group("/manutencoes", protect)
	maint.GET("", h.Maintenance.List)
	maint.POST("", h.Maintenance.Create)
	maint.GET("/truck/:truckId", h.Maintenance.ByTruck)
	maint.GET("/truck/:truckId/stats", h.Maintenance.Stats)
	maint.GET("/:id", h.Maintenance.Get)
}
