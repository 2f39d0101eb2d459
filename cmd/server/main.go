package main // Entry point package

import (
	"context" // bounds startup calls against slow dependencies
	"log"     // Logging library
	"time"    // startup timeouts

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/campground-listings/internal/config"     // Internal config loader
	"github.com/iliyamo/campground-listings/internal/database"   // Mongo connection and indexes
	"github.com/iliyamo/campground-listings/internal/geocode"    // forward geocoding client
	"github.com/iliyamo/campground-listings/internal/handler"    // HTTP handlers
	appmw "github.com/iliyamo/campground-listings/internal/middleware" // session, cache and rate-limit middleware
	"github.com/iliyamo/campground-listings/internal/objstore"   // image object storage
	"github.com/iliyamo/campground-listings/internal/queue"      // image cleanup consumer
	"github.com/iliyamo/campground-listings/internal/repository" // Mongo repositories
	"github.com/iliyamo/campground-listings/internal/router"     // Internal router setup
	"github.com/iliyamo/campground-listings/internal/session"    // Redis session store
	"github.com/iliyamo/campground-listings/internal/validate"   // request validation
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.MongoURI, cfg.MongoDB) // Connect to Mongo and ensure indexes
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	users := repository.NewUserRepo(db)
	camps := repository.NewCampgroundRepo(db)
	reviews := repository.NewReviewRepo(db)

	rdb := config.NewRedisClient() // Redis backs sessions; without it nobody can log in
	if rdb == nil {
		log.Fatal("redis: connection failed, sessions unavailable")
	}
	sessions := session.NewStore(rdb)

	images, err := objstore.NewClient(cfg) // MinIO hosts the campground images
	if err != nil {
		log.Fatalf("objstore: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := images.EnsureBucket(ctx); err != nil {
		cancel()
		log.Fatalf("objstore: %v", err)
	}
	cancel()

	geo := geocode.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderToken) // disabled when no endpoint is configured

	// Background consumer purging image blobs for deleted campgrounds.
	go func() {
		if err := queue.StartImageCleanupConsumer(images); err != nil {
			log.Printf("cleanup consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = validate.EchoValidator{}
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler()

	e.Use(appmw.LoadSession(cfg.SessionSecret, sessions)) // resolve the session cookie on every request

	// Anonymous GET responses may be served from Redis; credential
	// endpoints get the token-bucket limiter.
	e.Use(appmw.NewRedisCache(config.LoadCacheConfig(), rdb))
	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	authH := handler.NewAuthHandler(cfg, users, sessions)
	campH := handler.NewCampgroundHandler(cfg, camps, reviews, users, sessions, images, geo)
	reviewH := handler.NewReviewHandler(reviews, sessions)

	router.RegisterRoutes(e) // Register application routes
	router.RegisterAuth(e, authH, limiter)
	router.RegisterCampgrounds(e, campH, cfg.SessionSecret, sessions, cfg.SessionTTL(), camps)
	router.RegisterReviews(e, reviewH, cfg.SessionSecret, sessions, cfg.SessionTTL(), reviews)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
