// Command ledgerctl runs administrative ledger tasks against the database directly:
// batch code issuance, revocation and revenue reports.
package main

import (
	"os"

	"eduledger/internal/code"
	"eduledger/internal/config"
	"eduledger/internal/db"
	"eduledger/internal/logger"
	"eduledger/internal/revenue"
	"eduledger/internal/user"
	"eduledger/internal/wallet"
)

func main() {
	logger.Init()
	if err := newRootCmd(connect).Execute(); err != nil {
		os.Exit(1)
	}
}

func connect(migrate bool) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
			database.Close()
			return nil, err
		}
	}

	return &services{
		codes: code.NewService(database, code.NewRepository(), user.NewRepository(database),
			wallet.NewRepository(), code.NewTokenizer(cfg.CodeSecret)),
		revenue: revenue.NewService(database, revenue.NewRepository()),
		close:   database.Close,
	}, nil
}
