package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/logger"
	inventorySvcs "github.com/ghuser/stockledger/services/inventory/application/services"
)

// opener loads the inventory services. The returned func releases connections.
type opener func(ctx context.Context) (*inventorySvcs.Services, func(), error)

func commands(open opener, out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&stockCmd{open: open, out: out},
		&exportCmd{open: open, out: out},
		&backupCmd{open: open, out: out},
		&restoreCmd{open: open, out: out},
	}
}

// openLedger wires the services the way cmd/api does, minus HTTP, sessions
// and events. Logs go to stderr so stdout stays clean for data.
func openLedger(ctx context.Context) (*inventorySvcs.Services, func(), error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)

	authenticator, err := app.NewAuthenticator(cfg)
	if err != nil {
		return nil, nil, err
	}

	a := &app.Application{Config: cfg, Logger: log, Authenticator: authenticator}
	cleanup := func() {}
	if cfg.Storage == config.StorageRedis {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.Redis = client
		cleanup = func() { _ = client.Close() }
	} else {
		log.Warn("STORAGE=memory: stockctl sees an empty ledger")
	}

	svcs, err := inventorySvcs.New(ctx, a)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svcs, cleanup, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}
