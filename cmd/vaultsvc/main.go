package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/cardvault/vault-services/configs"
	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/handlers"
	"github.com/cardvault/vault-services/internal/vaultsvc/service"
	"github.com/cardvault/vault-services/internal/vaultsvc/store"
	"github.com/cardvault/vault-services/internal/vaultsvc/ws"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "vault"

var instanceId string

func init() {
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// local key-value persistence
	db, err := localstore.Open(os.Getenv("VAULT_DATA_DIR"))
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	log.Infof("local store opened at %s", db.Dir())

	accountStore, err := store.NewAccountStore(db)
	if err != nil {
		log.Fatalf("Failed to load accounts: %v", err)
	}
	profileStore, err := store.NewProfileStore(db)
	if err != nil {
		log.Fatalf("Failed to load profiles: %v", err)
	}
	cardStore, err := store.NewCardStore(db)
	if err != nil {
		log.Fatalf("Failed to load cards: %v", err)
	}
	requestStore, err := store.NewRequestStore(db)
	if err != nil {
		log.Fatalf("Failed to load requests: %v", err)
	}
	sessionStore, err := store.NewSessionStore(db)
	if err != nil {
		log.Fatalf("Failed to load session: %v", err)
	}

	identityService := service.NewIdentityService(accountStore, profileStore, cardStore, sessionStore)
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		identityService.AdminEmail = email
	}
	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		identityService.AdminPassword = password
	}
	requestService := service.NewRequestService(requestStore, profileStore, accountStore)
	validationService := service.NewValidationService(cardStore, profileStore, accountStore)

	// seed the admin identity on first run
	if err := identityService.Bootstrap(); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	// scan feed
	scanFeed := ws.NewWs(validationService)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimit := 120
	if rateLimitStr := os.Getenv("RATE_LIMIT"); rateLimitStr != "" {
		rateLimit, err = strconv.Atoi(rateLimitStr)
		if err != nil {
			log.Fatalf("Invalid RATE_LIMIT value: %v", err)
		}
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(identityService, requestService, validationService, scanFeed)
	h.InitAuth()
	h.SetRoutes(r)

	port := os.Getenv("VAULT_SERVICE_PORT")
	if port == "" {
		port = "8077"
	}

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
