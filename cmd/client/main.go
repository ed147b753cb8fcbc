package main

import (
	"context"
	"log/slog"

	"github.com/medialift/medialift/internal/client/cli"
	"github.com/medialift/medialift/internal/client/config"
	"github.com/medialift/medialift/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(slog.LevelWarn)

	app := cli.NewApp(cfg, logger)
	app.Run(ctx)
}
