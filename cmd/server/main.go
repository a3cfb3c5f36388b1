package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/config"
	"github.com/Aldiyar2201/Visitor_Manager/internal/database"
	"github.com/Aldiyar2201/Visitor_Manager/internal/desktop"
	"github.com/Aldiyar2201/Visitor_Manager/internal/events"
	"github.com/Aldiyar2201/Visitor_Manager/internal/guard"
	"github.com/Aldiyar2201/Visitor_Manager/internal/handlers"
	"github.com/Aldiyar2201/Visitor_Manager/internal/hub"
	"github.com/Aldiyar2201/Visitor_Manager/internal/jobs"
	"github.com/Aldiyar2201/Visitor_Manager/internal/notify"
	"github.com/Aldiyar2201/Visitor_Manager/internal/realtime"
	"github.com/Aldiyar2201/Visitor_Manager/internal/repository"
	scheduler "github.com/Aldiyar2201/Visitor_Manager/internal/scheduler"
	"github.com/Aldiyar2201/Visitor_Manager/internal/services"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/logger"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	ctx := context.Background()

	// Connect to RabbitMQ; notification events flow through it so delivery
	// is decoupled from the producing request.
	amqpConn, err := events.DialWithRetry(ctx, cfg.AMQPURL, 5, 2*time.Second)
	if err != nil {
		log.Fatalf("AMQP connection error: %v", err)
	}
	publisher, err := events.NewPublisher(amqpConn, cfg.AMQPExchange)
	if err != nil {
		log.Fatalf("AMQP publisher error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	visitRepo := repository.NewVisitRepository(db)

	// --- In-memory notification centers, one per connected user ---
	registry := notify.NewRegistry()

	// --- Services ---
	userService := services.NewUserService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, registry, publisher)
	ruleService := services.NewRuleService(ruleRepo)
	roleService := services.NewRoleService(roleRepo)
	visitService := services.NewVisitService(visitRepo, notificationService)

	// --- Realtime pipeline ---
	wsHub := hub.New(cfg.JWTSecret, registry, notificationService, cfg.ToastCapacity)
	bridge := desktop.NewBridge(desktop.LogSink{})
	channel := realtime.NewChannel(registry, wsHub.Queue, bridge, notificationService.GetSettings, notificationService.FetchLatest)
	wsHub.SetConnectionListener(channel.OnConnectionChange)

	consumer := events.NewConsumer(amqpConn, cfg.AMQPExchange, "visitor.notifications", channel)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			logger.Log.WithError(err).Error("Event consumer stopped")
		}
	}()

	// --- Background escalation ---
	worker := jobs.NewEscalationWorker(notificationRepo, ruleRepo, userRepo, notificationService, nil)
	scheduler.StartEscalationCronJobs(worker, notificationService)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	ruleHandler := handlers.NewRuleHandler(ruleService)
	roleHandler := handlers.NewRoleHandler(roleService)
	visitHandler := handlers.NewVisitHandler(visitService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	// Public user routes
	api.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	api.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := api.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/settings", userHandler.GetSettingsHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/settings", userHandler.UpdateSettingsHandler).Methods("PUT")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Notification center routes
	notificationRoutes := api.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/read", notificationHandler.BatchMarkReadHandler).Methods("PUT")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkReadHandler).Methods("PUT")
	notificationRoutes.HandleFunc("/{id}/acknowledge", notificationHandler.AcknowledgeHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Visit routes
	visitRoutes := api.PathPrefix("/visits").Subrouter()
	visitRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	visitRoutes.HandleFunc("", visitHandler.CreateVisitHandler).Methods("POST")
	visitRoutes.HandleFunc("", visitHandler.GetVisitsHandler).Methods("GET")
	visitRoutes.HandleFunc("/{id}", visitHandler.GetVisitHandler).Methods("GET")
	visitRoutes.HandleFunc("/{id}/checkin", visitHandler.CheckInHandler).Methods("POST")
	visitRoutes.HandleFunc("/{id}/checkout", visitHandler.CheckOutHandler).Methods("POST")
	visitRoutes.HandleFunc("/{id}/cancel", visitHandler.CancelVisitHandler).Methods("POST")

	// Escalation rule routes: admins, or anyone granted the management
	// permission, evaluated per request.
	ruleRoutes := api.PathPrefix("/escalation-rules").Subrouter()
	ruleRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	ruleRoutes.Use(middleware.RequireCheck(guard.Check{
		AllowAdmin: true,
		Permission: "escalation_rules:manage",
	}))
	ruleRoutes.HandleFunc("", ruleHandler.CreateRuleHandler).Methods("POST")
	ruleRoutes.HandleFunc("", ruleHandler.GetRulesHandler).Methods("GET")
	ruleRoutes.HandleFunc("/validate", ruleHandler.ValidateRuleHandler).Methods("POST")
	ruleRoutes.HandleFunc("/bulk/toggle", ruleHandler.BulkToggleHandler).Methods("POST")
	ruleRoutes.HandleFunc("/bulk/delete", ruleHandler.BulkDeleteHandler).Methods("POST")
	ruleRoutes.HandleFunc("/{id}", ruleHandler.GetRuleHandler).Methods("GET")
	ruleRoutes.HandleFunc("/{id}", ruleHandler.UpdateRuleHandler).Methods("PUT")
	ruleRoutes.HandleFunc("/{id}", ruleHandler.DeleteRuleHandler).Methods("DELETE")

	// Role routes, admin only
	roleRoutes := api.PathPrefix("/roles").Subrouter()
	roleRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	roleRoutes.Use(middleware.RequireRole("admin"))
	roleRoutes.HandleFunc("", roleHandler.CreateRoleHandler).Methods("POST")
	roleRoutes.HandleFunc("", roleHandler.GetRolesHandler).Methods("GET")
	roleRoutes.HandleFunc("/{id}", roleHandler.GetRoleHandler).Methods("GET")
	roleRoutes.HandleFunc("/{id}", roleHandler.UpdateRoleHandler).Methods("PATCH")
	roleRoutes.HandleFunc("/{id}", roleHandler.DeactivateRoleHandler).Methods("DELETE")

	// Admin routes
	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", userHandler.GetAllUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/notifications", notificationHandler.CreateNotificationHandler).Methods("POST")

	// Websocket endpoint; authenticates via ?token= since browsers cannot
	// set headers on websocket upgrades.
	router.HandleFunc("/ws", wsHub.ServeWS)

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
