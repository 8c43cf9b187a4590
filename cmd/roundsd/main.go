package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "roundsd",
		Usage:   "community service for verified medical professionals",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "sqlite:// path or postgres:// connection string",
			Value:   "sqlite://data/roundsd/rounds.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "offense state in redis when set; in-process otherwise",
			EnvVars: []string{"ROUNDSD_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the HTTP API",
			Value:   ":4000",
			EnvVars: []string{"ROUNDSD_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":4001",
			EnvVars: []string{"ROUNDSD_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "document-verify-host",
			Usage:   "base URL of the document OCR verification backend",
			Value:   "http://localhost:8600",
			EnvVars: []string{"ROUNDSD_DOCUMENT_VERIFY_HOST"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   40,
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		srv, err := NewServer(Config{
			DatabaseURL:        cctx.String("database-url"),
			RedisURL:           cctx.String("redis-url"),
			DocumentVerifyHost: cctx.String("document-verify-host"),
			MaxDBConnections:   cctx.Int("max-db-connections"),
			Logger:             logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			logger.Info("shutdown requested")
			srv.Shutdown(context.Background())
		}()

		return srv.RunAPI(cctx.String("bind"))
	},
}
