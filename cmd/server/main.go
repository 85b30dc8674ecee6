package main

import (
	"os"

	"cmsmall/internal/config"
	"cmsmall/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "cmsmall",
		Usage:   "content management service for block based pages",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "path of the .env file, searched upwards from the working directory when empty",
			},
		},
		Before: func(c *cli.Context) error {
			config.LoadConfig(c.String("env-file"))
			logger.Setup(config.AppConfig.LogLevel, config.AppConfig.LogFormat, os.Stderr)
			return nil
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "starts the HTTP server",
				Action: runServer,
			},
			{
				Name:  "migrate",
				Usage: "migrates the database schema",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "seed",
						Usage: "also creates development users, images and the site title",
					},
				},
				Action: runMigrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("error in running command")
	}
}
