package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/myhometech/backend/internal/config"
	"github.com/myhometech/backend/internal/database"
	"github.com/myhometech/backend/internal/handler"
	"github.com/myhometech/backend/internal/middleware"
	"github.com/myhometech/backend/internal/queue"
	"github.com/myhometech/backend/internal/repository"
	"github.com/myhometech/backend/internal/router"
	"github.com/myhometech/backend/internal/service"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the response cache. nil means Redis
	// is unreachable and both features silently disable themselves.
	rdb := config.NewRedisClient()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	requests := repository.NewServiceRequestRepo(db)
	appliances := repository.NewApplianceRepo(db)
	ratings := repository.NewRatingRepo(db)
	tickets := repository.NewHelpTicketRepo(db)

	lifecycle := service.NewRequestLifecycle(requests, cfg.RequestValidMinutes)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	requestH := handler.NewRequestHandler(lifecycle, ratings)
	applianceH := handler.NewApplianceHandler(appliances)
	ticketH := handler.NewHelpTicketHandler(tickets)

	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterClient(e, requestH, applianceH, cfg.JWTSecret)
	router.RegisterTechnician(e, requestH, cfg.JWTSecret)
	router.RegisterShared(e, requestH, ticketH, cfg.JWTSecret, cache)

	// Consume completion events in the background; the loop reconnects on
	// broker failures and never takes the API down.
	go func() {
		if err := queue.StartRequestConsumer(); err != nil {
			log.Printf("request consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
