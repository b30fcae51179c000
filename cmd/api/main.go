package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	"zappygames/internal/app"
	"zappygames/internal/server"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

func gracefulShutdown(
	app *app.App,
	appServer *server.AppServer,
	done chan bool,
	log logger.Logger,
) {
	log = log.Function("gracefulShutdown")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")

	// In flight requests get 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := appServer.FiberApp.ShutdownWithContext(ctx); err != nil {
		log.Er("Server forced to shutdown", err)
	}

	log.Info("Server exiting")
	done <- true
}

func main() {
	log := logger.New("main")

	app, err := app.New()
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	server, err := server.New(app)
	if err != nil {
		os.Exit(1)
	}

	// The worker install fetches the shell from this server, so background
	// work starts once it is listening.
	server.FiberApp.Hooks().OnListen(func(fiber.ListenData) error {
		app.StartBackground(context.Background())
		return nil
	})

	done := make(chan bool, 1)

	go func() {
		err := server.Listen(app.Config.ServerPort)
		if err != nil {
			log.Er("server stopped", err)
			os.Exit(1)
		}
	}()

	go gracefulShutdown(app, server, done, log)

	<-done
	log.Info("Graceful shutdown complete.")
}
