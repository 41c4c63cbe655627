package main

import (
	"context"
	"time"

	aclean "github.com/airenas/async-api/pkg/clean"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/prismwriting/prism/internal/pkg/clean"
	"github.com/prismwriting/prism/internal/pkg/jobstore"
	"github.com/prismwriting/prism/internal/pkg/postgres"
	"github.com/prismwriting/prism/internal/pkg/setup"
)

func main() {
	if err := setup.LoadEnv(); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()
	cfg := goapp.Config
	cfg.SetDefault("timer.runEvery", 10*time.Minute)
	cfg.SetDefault("audit.keep", 90*24*time.Hour)

	data := &clean.Data{}
	data.Port = cfg.GetInt("port")

	ctx := context.Background()
	backends := setup.NewBackends(cfg)
	defer backends.Close()

	pool, err := backends.DBPool(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	dbCleaner, err := postgres.NewCleaner(pool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db cleaner")
	}
	fsCleaner, err := backends.Filer(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init file cleaner")
	}
	store, err := backends.JobStore(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init job store")
	}
	db, err := postgres.NewDB(pool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}

	printBanner()

	cleaner := &aclean.CleanerGroup{}
	cleaner.Jobs = append(cleaner.Jobs, fsCleaner)
	cleaner.Jobs = append(cleaner.Jobs, dbCleaner)
	cleaner.Jobs = append(cleaner.Jobs, &jobstore.Cleaner{Store: store})
	data.Cleaner = cleaner

	ctxTimer, cancelFunc := context.WithCancel(ctx)
	var doneCh <-chan struct{}
	ids, err := backends.ExpiredIDs(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init IDs provider")
	}
	if ids != nil {
		tData := aclean.TimerData{IDsProvider: ids, Cleaner: cleaner, RunEvery: cfg.GetDuration("timer.runEvery")}
		doneCh, err = aclean.StartCleanTimer(ctxTimer, &tData)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't start timer")
		}
	} else {
		goapp.Log.Info().Msg("job store evicts by itself, no expire timer")
	}
	auditDone, err := clean.StartAuditRetention(ctxTimer, &clean.RetentionData{DB: db, Keep: cfg.GetDuration("audit.keep"),
		RunEvery: cfg.GetDuration("timer.runEvery")})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start audit retention")
	}

	err = clean.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
	cancelFunc()
	timeout := time.After(time.Second * 15)
	for _, ch := range []<-chan struct{}{doneCh, auditDone} {
		if ch == nil {
			continue
		}
		select {
		case <-ch:
		case <-timeout:
			goapp.Log.Warn().Msg("Timeout graceful shutdown")
			return
		}
	}
	goapp.Log.Info().Msg("All code returned. Now exit. Bye")
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
     ____  ____  _________ __  ___
    / __ \/ __ \/  _/ ___//  |/  /
   / /_/ / /_/ // / \__ \/ /|_/ / 
  / ____/ _, _// / ___/ / /  / /  
 /_/   /_/ |_/___//____/_/  /_/   v: %s

   clean
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/prismwriting/prism"))
}
