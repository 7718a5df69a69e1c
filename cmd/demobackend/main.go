// Command demobackend serves canned ShipCheck reports so the front end can
// be tried without the real analysis service.
// Usage: go run ./cmd/demobackend [port]
// Default port: 8000
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/demobackend"
	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
)

func main() {
	cfg := demobackend.DefaultConfig()

	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("ShipCheck fixture backend")
	fmt.Println()
	fmt.Println("New reports stay pending for", cfg.PendingFor, "then settle with")
	fmt.Println("deterministic findings. Repositories whose name contains \"fail\" settle as failed.")
	fmt.Println()
	fmt.Printf("Point the front end at it with SHIPCHECK_API_BASE=http://localhost:%d\n", cfg.Port)
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := demobackend.NewServer(cfg, logging.NewStdoutLogger("demobackend"))
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
