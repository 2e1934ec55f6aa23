package cmd

import (
	"errors"
	"fmt"
	"net/http"

	logging "github.com/ipfs/go-log/v2"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/scrapmap/scrapmap/internal/telemetry"
	"github.com/scrapmap/scrapmap/pkg/aws"
	"github.com/scrapmap/scrapmap/pkg/server"
)

var log = logging.Logger("cmd")

var ServeCmd = &cli.Command{
	Name:  "serve",
	Usage: "Serve the full API on a local port.",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   8080,
			Usage:   "Port to bind the server to.",
			EnvVars: []string{"SCRAPMAP_PORT"},
			Action: func(c *cli.Context, v int) error {
				if v <= 0 || v > 65535 {
					return fmt.Errorf("invalid port: must be between 1 and 65535")
				}
				return nil
			},
		},
		&cli.StringFlag{
			Name:    "env-file",
			Aliases: []string{"e"},
			Usage:   "Path to a dotenv file with pool, table and role configuration.",
			EnvVars: []string{"SCRAPMAP_ENV_FILE"},
		},
	},
	Action: func(cCtx *cli.Context) error {
		if envFile := cCtx.String("env-file"); envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("loading env file: %w", err)
			}
		}

		cfg, err := aws.FromEnv(cCtx.Context)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment)

		service := aws.Construct(cfg)
		if err := service.CheckConfig(); err != nil {
			log.Warnf("identity routes disabled: %s", err)
		}
		if err := service.CheckReadConfig(); err != nil {
			log.Warnf("destination routes disabled: %s", err)
		}

		handler := telemetry.NewErrorReportingHandler(server.NewServer(
			server.WithIdentitySource(service),
			server.WithStoreSource(service),
		))
		addr := fmt.Sprintf(":%d", cCtx.Int("port"))
		log.Infof("Listening on %s", addr)
		err = http.ListenAndServe(addr, handler)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}
