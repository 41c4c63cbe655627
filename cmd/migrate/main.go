package main

import (
	"context"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/prismwriting/prism/internal/pkg/postgres"
	"github.com/prismwriting/prism/internal/pkg/setup"
)

func main() {
	if err := setup.LoadEnv(); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()

	ctx, cf := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cf()

	backends := setup.NewBackends(goapp.Config)
	defer backends.Close()

	pool, err := backends.DBPool(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't migrate")
	}
	goapp.Log.Info().Msg("done")
}
