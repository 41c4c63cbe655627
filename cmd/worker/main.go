package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/prismwriting/prism/internal/pkg/setup"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/prismwriting/prism/internal/pkg/worker"
)

func main() {
	if err := setup.LoadEnv(); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()
	cfg := goapp.Config

	data := &worker.ServiceData{}
	ctx := context.Background()

	backends := setup.NewBackends(cfg)
	defer backends.Close()

	var err error
	data.GueClient, err = backends.Gue(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue")
	}
	data.WorkerCount = defaultV(cfg.GetInt("worker.count"), 5)
	data.Testing = cfg.GetBool("worker.testing")
	data.StepDelay = defaultV(cfg.GetDuration("worker.stepDelay"), 2*time.Second)
	data.MsgSender, err = backends.Sender(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue sender")
	}
	data.Filer, err = backends.Filer(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init filer")
	}
	data.Store, err = backends.JobStore(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init job store")
	}
	data.Analyzer, err = backends.Analyzer(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init analyzer")
	}

	printBanner()
	go utils.RunPerfEndpoint()

	ctx, cancelFunc := context.WithCancel(context.Background())
	doneCh, err := worker.StartWorkerService(ctx, data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start worker service")
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

func defaultV[T comparable](v, def T) T {
	var empty T
	if v == empty {
		return def
	}
	return v
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

   worker
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/prismwriting/prism"))
}
