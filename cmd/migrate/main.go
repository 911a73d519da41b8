package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Dosada05/rank-ladder/db/migrate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	direction := flag.String("direction", string(migrate.Up), "up or down")
	flag.Parse()

	_ = godotenv.Load()

	if err := migrate.Run(os.Getenv("DATABASE_URL"), migrate.Direction(*direction)); err != nil {
		logger.Error("migration failed", slog.String("direction", *direction), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied", slog.String("direction", *direction))
}
