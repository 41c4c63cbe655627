package main

import (
	"context"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/prismwriting/prism/internal/pkg/setup"
	"github.com/prismwriting/prism/internal/pkg/statusservice"
)

func main() {
	if err := setup.LoadEnv(); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &statusservice.Data{}
	data.Port = cfg.GetInt("port")

	ctx := context.Background()
	backends := setup.NewBackends(cfg)
	defer backends.Close()

	store, err := backends.JobStore(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init job store")
	}
	data.Store = store
	wsh := statusservice.NewWSConnKeeper(cfg.GetDuration("ws.timeout"))
	wsh.OnSubscribe = statusservice.PushCurrent(store)
	data.WSHandler = wsh

	hData := &statusservice.HandlerData{}
	hData.Store = store
	hData.WorkerCount = max(cfg.GetInt("worker.count"), 1)
	hData.WSHandler = wsh
	hData.GueClient, err = backends.Gue(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue")
	}

	goapp.Log.Info().Msg("starting handler")
	ctx, cancelFunc := context.WithCancel(context.Background())
	doneCh, err := statusservice.StartStatusHandler(ctx, hData)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start status handler service")
	}

	goapp.Log.Info().Msg("starting web service")
	if err := statusservice.StartWebServer(data); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
	goapp.Log.Info().Msg("exit web service")
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

   status
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/prismwriting/prism"))
}
