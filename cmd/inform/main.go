package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	ainform "github.com/airenas/async-api/pkg/inform"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/prismwriting/prism/internal/pkg/inform"
	"github.com/prismwriting/prism/internal/pkg/postgres"
	"github.com/prismwriting/prism/internal/pkg/setup"
)

func main() {
	if err := setup.LoadEnv(); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()
	cfg := goapp.Config

	data := &inform.ServiceData{}
	ctx := context.Background()

	backends := setup.NewBackends(cfg)
	defer backends.Close()

	var err error
	data.GueClient, err = backends.Gue(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue")
	}
	data.WorkerCount = max(cfg.GetInt("worker.count"), 1)

	data.EmailMaker, err = ainform.NewTemplateEmailMaker(cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init email maker")
	}
	data.MailMaker, err = inform.NewTemplateMailMaker(cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init mail maker")
	}

	location := cfg.GetString("worker.location")
	if location != "" {
		data.Location, err = time.LoadLocation(location)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init location")
		}
		goapp.Log.Info().Str("local", time.Now().In(data.Location).Format(time.RFC3339)).Msg("time")
	}

	if cfg.GetString("smtp.fakeUrl") == "" {
		goapp.Log.Info().Str("sender", "real").Msg("smtp")
		data.EmailSender, err = ainform.NewSimpleEmailSender(cfg)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init email sender")
		}
	} else {
		goapp.Log.Info().Str("sender", "fake").Msg("smtp")
		data.EmailSender, err = inform.NewFakeEmailSender(cfg)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init fake email sender")
		}
	}

	pool, err := backends.DBPool(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	data.DB, err = postgres.NewDB(pool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}
	data.Store, err = backends.JobStore(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init job store")
	}

	printBanner()

	ctx, cancelFunc := context.WithCancel(context.Background())
	doneCh, err := inform.StartWorkerService(ctx, data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start inform service")
	}
	waitCh := make(chan os.Signal, 2)
	signal.Notify(waitCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-waitCh:
		goapp.Log.Info().Msg("Got exit signal")
	case <-doneCh:
		goapp.Log.Info().Msg("Service exit")
	}
	cancelFunc()
	select {
	case <-doneCh:
		goapp.Log.Info().Msg("All code returned. Now exit. Bye")
	case <-time.After(time.Second * 15):
		goapp.Log.Warn().Msg("Timeout graceful shutdown")
	}
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

   inform
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/prismwriting/prism"))
}
