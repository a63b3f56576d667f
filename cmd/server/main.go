package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/frotalog/fleet-api/internal/auth"
	"github.com/frotalog/fleet-api/internal/config"
	"github.com/frotalog/fleet-api/internal/database"
	"github.com/frotalog/fleet-api/internal/handler"
	"github.com/frotalog/fleet-api/internal/repository"
	"github.com/frotalog/fleet-api/internal/router"
	"github.com/frotalog/fleet-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}
	rlCfg := config.LoadRateLimitConfig()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	trucks := repository.NewTruckRepo(db)
	drivers := repository.NewDriverRepo(db)
	fuel := repository.NewFuelRepo(db)
	maintenance := repository.NewMaintenanceRepo(db)

	authSvc := service.NewAuth(users, sessions, tokens, cfg.RefreshTTL(), cfg.BcryptCost)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Trucks:      handler.NewTruckHandler(trucks),
		Drivers:     handler.NewDriverHandler(drivers),
		Fuel:        handler.NewFuelHandler(fuel, trucks, drivers),
		Maintenance: handler.NewMaintenanceHandler(maintenance, trucks),
	}, tokens, rlCfg, rdb)

	log.Printf("listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
