package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "stock-orders/internal/adapters/web"
	"stock-orders/internal/ai"
	"stock-orders/internal/app"
	"stock-orders/internal/config"
	"stock-orders/internal/db"
	"stock-orders/internal/store"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	migrateDownFlag = flag.Bool("migrate-down", false, "Roll back every DB migration and exit")
	issueTokenFlag  = flag.String("issue-token", "", "Print a bearer token for the given subject and exit")
	tokenTTLFlag    = flag.Duration("token-ttl", 30*24*time.Hour, "Lifetime of a token printed by -issue-token")
)

func main() {
	flag.Parse()
	cfg := config.Load()

	if *issueTokenFlag != "" {
		if cfg.Server.JWTSecret == "" {
			log.Fatal("JWT_SECRET is not set")
		}
		token, err := webAdapter.IssueToken(cfg.Server.JWTSecret, *issueTokenFlag, cfg.Client.EnterpriseID, *tokenTTLFlag)
		if err != nil {
			log.Fatalf("token: %v", err)
		}
		fmt.Println(token)
		return
	}

	if *migrateDownFlag {
		if err := db.MigrateDown(cfg.Database.URL); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Migrations rolled back")
		return
	}
	if *migrateOnlyFlag || cfg.Database.Migrations {
		if err := db.Migrate(cfg.Database.URL); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed")
		if *migrateOnlyFlag {
			return
		}
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	var agent ai.DraftProposer
	if cfg.AI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; draft proposals are disabled")
	} else {
		agent = ai.NewDraftAgent(cfg.AI.APIKey, cfg.AI.Model)
	}

	svc := app.NewAppService(
		store.NewArticleService(pool),
		store.NewPartyService(pool),
		store.NewOrderService(pool),
		store.NewMovementService(pool),
		agent,
	)
	if cfg.Server.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET is not set; the API is unauthenticated")
	}
	handler := webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins, cfg.Server.JWTSecret)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("server starting on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}
