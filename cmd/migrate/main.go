package main

import (
	"database/sql"
	"flag"
	"os"

	_ "github.com/lib/pq"

	"github.com/OnlyUp2219/TimeCafe-sub002/internal/config"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/database"
	"github.com/OnlyUp2219/TimeCafe-sub002/internal/logger"
)

func main() {
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg := config.LoadConfig()
	appLogger := logger.New(cfg)

	db, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		appLogger.Error("❌ [Migrate] Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		appLogger.Error("❌ [Migrate] Database unreachable", "error", err)
		os.Exit(1)
	}

	appLogger.Info("🔄 [Migrate] Running migration command", "command", command)

	if err := database.Migrate(db, command); err != nil {
		appLogger.Error("❌ [Migrate] Migration failed", "command", command, "error", err)
		os.Exit(1)
	}

	appLogger.Info("✅ [Migrate] Done", "command", command)
}
