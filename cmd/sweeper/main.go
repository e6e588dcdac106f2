// Command sweeper deletes expired refresh tokens once and exits. It reads the
// same configuration as the server and is meant for cron-style schedulers.
package main

import (
	"context"
	"log"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

const runTimeout = 5 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	n, err := app.SweepOnce(ctx)
	closeErr := app.Close()
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}
	if closeErr != nil {
		log.Printf("close: %v", closeErr)
	}
	log.Printf("removed %d expired refresh tokens", n)
}
