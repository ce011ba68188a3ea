package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NicoGleichmann/shopWebsite/internal/app"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		a, err := app.New(ctx)
		if err != nil {
			return err
		}
		return a.Run(ctx)

	case "ensure-indexes":
		return withApp(ctx, func(ctx context.Context, a *app.App) error {
			if err := a.EnsureIndexes(ctx); err != nil {
				return err
			}
			slog.Info("indexes ensured")
			return nil
		})

	case "seed":
		return withApp(ctx, func(ctx context.Context, a *app.App) error {
			n, err := a.SeedProducts(ctx)
			if err != nil {
				return err
			}
			slog.Info("catalog seeded", "products", n)
			return nil
		})

	default:
		return fmt.Errorf("unknown command %q (expected serve, ensure-indexes or seed)", cmd)
	}
}

// withApp runs a one-shot task with a bounded deadline and tears the app
// down afterwards.
func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := a.Close(closeCtx); err != nil {
			slog.Warn("close", "error", err)
		}
	}()

	return fn(ctx, a)
}
