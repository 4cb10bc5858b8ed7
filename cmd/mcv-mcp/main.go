package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"mcvassist-backend/lib/configutil"
	"mcvassist-backend/lib/scrapers/courseville"
	"mcvassist-backend/lib/serviceutil"
	"mcvassist-backend/lib/telemetry"
	"mcvassist-backend/services/mcp"
)

type Config struct {
	BaseUrl string `json:"base_url"`
}

func main() {
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "mcv-mcp")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())

	// stdout carries the protocol, logs may only go to stderr
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)

	cfg, err := configutil.Read[Config]("mcv.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}

	cookie := os.Getenv("MCV_COOKIE")
	if cookie == "" {
		serviceutil.Fatal(
			"MCV_COOKIE is required, get it from the browser: F12 -> Console -> document.cookie",
			errors.New("environment variable is empty"),
		)
	}

	client, err := courseville.NewClient(ctx, courseville.ClientOptions{
		BaseUrl: cfg.BaseUrl,
		Cookie:  cookie,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize courseville client", err)
	}

	slog.Info("serving mcp over stdio")
	if err := mcp.NewServer(client).Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		serviceutil.Fatal("mcp server exited", err)
	}
}
