package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/CUknot/messenger_backend/chat"
	"github.com/CUknot/messenger_backend/config"
	"github.com/CUknot/messenger_backend/controllers"
	"github.com/CUknot/messenger_backend/database"
	"github.com/CUknot/messenger_backend/docs"
	"github.com/CUknot/messenger_backend/middleware"
	"github.com/CUknot/messenger_backend/store"
	"github.com/CUknot/messenger_backend/websocket"
)

const shutdownTimeout = 10 * time.Second

// @title           Messenger API
// @version         1.0
// @description     Rooms, direct messages and the live /ws channel of the messenger
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		logrus.Fatalf("Server stopped: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	log := logrus.NewEntry(logger)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Connect(cfg.DSN(), log.WithField("component", "database"))
	if err != nil {
		return err
	}
	defer closeDB(db, log)
	if err := database.Migrate(db, log.WithField("component", "database")); err != nil {
		return err
	}
	directory := store.NewGormDirectory(db)
	if err := database.Seed(ctx, db, directory, cfg.AdminPassword, log.WithField("component", "database")); err != nil {
		return err
	}

	messages, err := openMessageStore(cfg, db, directory, log.WithField("component", "store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := messages.Close(); err != nil {
			log.WithError(err).Warn("Close message store")
		}
	}()

	registry := chat.NewRegistry()
	resolver := chat.NewResolver(directory)
	broadcaster := chat.NewBroadcaster(registry, resolver, messages, loc, log.WithField("component", "broadcaster"))

	hub := websocket.NewHub(log.WithField("component", "hub"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	auth := middleware.NewTokenAuthenticator(cfg.JWTSecret, directory)
	wsHandler := websocket.NewHandler(hub, auth, registry, resolver, broadcaster, cfg.SendBufferSize, log.WithField("component", "session"))

	authController := controllers.NewAuthController(directory, cfg.JWTSecret, cfg.TokenTTL)
	roomController := controllers.NewRoomController(directory, messages, cfg.RoomHistoryLimit, loc)
	userController := controllers.NewUserController(directory)
	dmController := controllers.NewDMController(directory, messages, cfg.DMHistoryLimit, loc)

	// Set up Swagger info
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(log.WithField("component", "http")), middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authentication routes
	public := router.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(auth.JWTAuth())
	{
		api.GET("/me", authController.Me)
		api.GET("/rooms", roomController.GetRooms)
		api.GET("/rooms/:slug/messages", roomController.GetRoomMessages)
		api.GET("/users/:code", userController.GetUserByCode)
		api.GET("/dms/:code/messages", dmController.GetDMMessages)
		api.POST("/dms/:code/read", dmController.MarkDMRead)
		api.GET("/conversations", dmController.GetConversations)
	}

	// WebSocket route
	router.GET("/ws", wsHandler.HandleConnection)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Server running")
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown")
	}
	// Hijacked websocket connections are not tracked by the server; the hub closes them.
	stopHub()
	<-hub.Done()
	return nil
}

func openMessageStore(cfg config.Config, db *gorm.DB, rooms store.RoomFinder, log *logrus.Entry) (store.MessageStore, error) {
	clock := store.NewClock()
	switch cfg.StoreBackend {
	case config.BackendBadger:
		bdb, err := store.OpenBadger(cfg.BadgerPath, log)
		if err != nil {
			return nil, err
		}
		s, err := store.NewBadgerStore(bdb, rooms, clock, log)
		if err != nil {
			_ = bdb.Close()
			return nil, err
		}
		log.WithField("path", cfg.BadgerPath).Info("Badger message store opened")
		return s, nil
	default:
		return store.NewGormStore(db, clock), nil
	}
}

func closeDB(db *gorm.DB, log *logrus.Entry) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("Close database")
	}
}
