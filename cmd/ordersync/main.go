package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"stock-orders/internal/adapters/cli"
	"stock-orders/internal/adapters/rest"
	"stock-orders/internal/ai"
	"stock-orders/internal/config"
	"stock-orders/internal/db"
	"stock-orders/internal/store"
)

var localFlag = flag.Bool("local", false, "Use DATABASE_URL directly instead of the REST API")

// localBackend serves ordersync from the pgx store.
type localBackend struct {
	store.ArticleService
	store.PartyService
	store.OrderService
	store.MovementService
}

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, cli.Usage()) }
	flag.Parse()
	log.SetFlags(0)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env := cli.Env{EnterpriseID: cfg.Client.EnterpriseID}
	if *localFlag {
		pool, err := db.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		env.Backend = &localBackend{
			ArticleService:  store.NewArticleService(pool),
			PartyService:    store.NewPartyService(pool),
			OrderService:    store.NewOrderService(pool),
			MovementService: store.NewMovementService(pool),
		}
	} else {
		env.Backend = rest.NewClient(cfg.Client.BaseURL,
			rest.WithToken(cfg.Client.Token),
			rest.WithTimeout(cfg.Client.Timeout),
		)
	}
	if cfg.AI.APIKey != "" {
		env.Agent = ai.NewDraftAgent(cfg.AI.APIKey, cfg.AI.Model)
	}

	if err := cli.Run(ctx, env, flag.Args()); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, cli.Usage())
			os.Exit(2)
		}
		log.Fatalf("ordersync: %v", err)
	}
}
