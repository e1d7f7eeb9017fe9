package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vinaivinu15-cell/FAM2GETHER/config"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/room"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/routers"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/websocket"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize the application
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	clk := clock.New()

	registry, err := room.NewRegistry(clk, config.Conf.ROOM.CodeLength)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize room registry")
	}
	janitor := room.NewJanitor(registry, config.Conf.ROOM.CleanupDelay, clk)

	wsHub := websocket.NewHub()
	log.Info().Msg("Websocket hub initialized")

	events := websocket.NewEventRouter(wsHub, registry, janitor, config.Conf.ROOM.FreeSession)
	events.MaxConnections = 10000
	events.MaxPerIP = 20
	log.Info().Msg("Event router initialized")

	r := routers.NewRouter(registry, wsHub, events)

	server := &http.Server{
		Addr:              config.Conf.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
	}

	// serve the application
	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")
	// gracefully shutdown the application
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Graceful shutdown failed: %v\n", err)
	} else {
		fmt.Println("Server exited gracefully.")
	}
	wsHub.Close()
}
