package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"accu-registry/config"
	"accu-registry/controllers"
	"accu-registry/database"
	"accu-registry/middleware"
	"accu-registry/services"
)

func initBuybackScheduler(db *database.Database, emailService *services.EmailService, cfg *config.Config) {
	scheduler := services.NewBuybackSchedulerService(db.DB, emailService, cfg.Scheduler.ReminderDays)
	scheduler.Start()
	log.Println("Buyback reminder scheduler started")
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Loading configuration: %v", err)
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Connecting to database: %v", err)
	}

	emailService := services.NewEmailService(cfg)

	initBuybackScheduler(db, emailService, cfg)

	router := mux.NewRouter()
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RateLimitMiddleware)

	authController := controllers.NewAuthController(db, cfg)
	batchController := controllers.NewBatchController(db)
	loanController := controllers.NewLoanController(db, emailService)
	reclassificationController := controllers.NewReclassificationController(db, emailService)
	marketController := controllers.NewMarketController(db)
	registryController := controllers.NewRegistryController(db)
	systemController := controllers.NewSystemController(db)

	// Public routes
	router.HandleFunc("/health", systemController.Health).Methods("GET")
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Protected routes
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)

	// ACCU batch ledger
	protected.HandleFunc("/batches", batchController.CreateBatch).Methods("POST")
	protected.HandleFunc("/batches", batchController.GetBatches).Methods("GET")
	protected.HandleFunc("/batches/{id}", batchController.GetBatch).Methods("GET")
	protected.HandleFunc("/batches/{id}", batchController.UpdateBatch).Methods("PUT")
	protected.HandleFunc("/batches/{id}", batchController.DeleteBatch).Methods("DELETE")
	protected.HandleFunc("/batches/{id}/valuations", batchController.RecordValuation).Methods("POST")

	// Loan ledger
	protected.HandleFunc("/loans", loanController.CreateLoan).Methods("POST")
	protected.HandleFunc("/loans", loanController.GetLoans).Methods("GET")
	protected.HandleFunc("/loans/{id}", loanController.GetLoan).Methods("GET")
	protected.HandleFunc("/loans/{id}/repay", loanController.RepayLoan).Methods("POST")
	protected.HandleFunc("/loans/{id}/default", loanController.DefaultLoan).Methods("POST")

	// Reclassification workflow
	protected.HandleFunc("/reclassifications", reclassificationController.SubmitRequest).Methods("POST")
	protected.HandleFunc("/reclassifications", reclassificationController.GetRequests).Methods("GET")
	protected.HandleFunc("/reclassifications/{id}", reclassificationController.GetRequest).Methods("GET")
	protected.HandleFunc("/reclassifications/{id}/approve", reclassificationController.ApproveRequest).Methods("POST")
	protected.HandleFunc("/reclassifications/{id}/reject", reclassificationController.RejectRequest).Methods("POST")

	// Market price ledger
	protected.HandleFunc("/marketdata", marketController.CreateMarketPrice).Methods("POST")
	protected.HandleFunc("/marketdata", marketController.GetMarketPrices).Methods("GET")
	protected.HandleFunc("/marketdata/{id}", marketController.GetMarketPrice).Methods("GET")

	// Reference data
	protected.HandleFunc("/entities", registryController.CreateEntity).Methods("POST")
	protected.HandleFunc("/entities", registryController.GetEntities).Methods("GET")
	protected.HandleFunc("/entities/{id}", registryController.GetEntity).Methods("GET")
	protected.HandleFunc("/entities/{id}", registryController.DeleteEntity).Methods("DELETE")
	protected.HandleFunc("/creditors", registryController.CreateCreditor).Methods("POST")
	protected.HandleFunc("/creditors", registryController.GetCreditors).Methods("GET")
	protected.HandleFunc("/creditors/{id}", registryController.GetCreditor).Methods("GET")
	protected.HandleFunc("/projects", registryController.CreateProject).Methods("POST")
	protected.HandleFunc("/projects", registryController.GetProjects).Methods("GET")
	protected.HandleFunc("/projects/{id}", registryController.GetProject).Methods("GET")

	// Reports and operations
	protected.HandleFunc("/reports/holdings", systemController.HoldingsReport).Methods("GET")
	protected.HandleFunc("/metrics", systemController.Metrics).Methods("GET")

	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Starting server: %v", err)
	}
}
