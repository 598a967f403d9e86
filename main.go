package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/docombos/docombos/apps/go-server/internal/broker"
	"github.com/docombos/docombos/apps/go-server/internal/game"
	"github.com/docombos/docombos/apps/go-server/internal/httpserver"
	"github.com/docombos/docombos/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(getEnv("DB_PATH", "./data/docombos.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	cfg := httpserver.Config{
		Rules:           rulesFromEnv(),
		RoomIdleTimeout: time.Duration(envInt("ROOM_IDLE_SECONDS", 120)) * time.Second,
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		pub, err := broker.Connect(url, "docombos-server")
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("nats unavailable, room fan-out disabled")
		} else {
			defer pub.Close()
			if err := pub.ServePing(); err != nil {
				log.Warn().Err(err).Msg("nats ping responder")
			}
			cfg.Publisher = pub
		}
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, db, cfg)
	port := getEnv("PORT", "5175")
	hs := &http.Server{Addr: ":" + port, Handler: srv.Handler()}

	go func() {
		log.Info().Str("port", port).Int("goal", cfg.Rules.ScoreGoal).Msg("starting go-server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	srv.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}

// rulesFromEnv starts from the default rule set and applies overrides.
func rulesFromEnv() game.Rules {
	r := game.DefaultRules()
	r.ScoreGoal = envInt("SCORE_GOAL", r.ScoreGoal)
	r.StartDelay = time.Duration(envInt("START_DELAY_SECONDS", int(r.StartDelay/time.Second))) * time.Second
	return r
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
