package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sensorgrid/telemetry/internal/config"
	"github.com/sensorgrid/telemetry/internal/database"
	httpHandlers "github.com/sensorgrid/telemetry/internal/http"
	"github.com/sensorgrid/telemetry/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect(config.DBDriver(), config.DBDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if err := database.InitSchema(context.Background(), db, config.DBDriver()); err != nil {
		log.Fatal().Err(err).Msg("schema init failed")
	}

	svcs := service.New(db, config.BatteryLowDefault())
	app := fiber.New()

	httpHandlers.Register(app, svcs)

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Str("driver", config.DBDriver()).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
