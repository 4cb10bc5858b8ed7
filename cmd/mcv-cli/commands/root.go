package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mcvassist-backend/lib/configutil"
	"mcvassist-backend/lib/scrapers/courseville"
	"mcvassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcv-cli",
	Short: "mcv-cli inspects MyCourseVille scraping output from the terminal.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	BaseUrl string `json:"base_url"`
}

func createClient(ctx context.Context) *courseville.Client {
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
	return client
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
