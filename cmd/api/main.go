package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"user-crud-service/cmd/api/app"
	"user-crud-service/cmd/api/server"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Directory containing app.env",
		EnvVars: []string{"CONFIG_PATH"},
		Value:   ".",
	}

	cliApp := &cli.App{
		Name:    "user-crud-service",
		Usage:   "REST service for managing users",
		Version: Version,
		Flags:   []cli.Flag{configFlag},
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Create or update the users table and exit",
				Action: func(c *cli.Context) error {
					return app.Migrate(c.String("config"))
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}

func serve(c *cli.Context) error {
	a, err := app.New(c.String("config"))
	if err != nil {
		return err
	}

	ctx, stop := server.WithSignal(context.Background(), a.Logger)
	defer stop()

	return a.Run(ctx)
}
