package main

import (
	"context"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/prismwriting/prism/internal/pkg/jobstore"
	"github.com/prismwriting/prism/internal/pkg/local"
	"github.com/prismwriting/prism/internal/pkg/setup"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/prismwriting/prism/internal/pkg/utils/handler"
	"github.com/prismwriting/prism/internal/pkg/video"
	"github.com/prismwriting/prism/internal/pkg/worker"
	"github.com/vgarvardt/gue/v5"
)

func main() {
	if err := setup.LoadEnv(); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()

	printBanner()
	go utils.RunPerfEndpoint()

	cfg := goapp.Config
	data := &video.Data{}
	data.Port = cfg.GetInt("port")

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	backends := setup.NewBackends(cfg)
	defer backends.Close()

	filer, err := backends.Filer(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init file saver")
	}
	data.Saver = filer
	if cfg.GetBool("filer.presign") {
		data.Presigner, err = backends.Presigner()
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init presigner")
		}
	}
	data.Store, err = backends.JobStore(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init job store")
	}
	if m, ok := data.Store.(*jobstore.Memory); ok {
		m.StartEviction(ctx, time.Minute)
	}

	if cfg.GetBool("worker.local") {
		pool, err := local.NewPool(gue.WorkMap{}, max(cfg.GetInt("worker.count"), 1),
			max(cfg.GetInt("worker.queueSize"), 100), handler.DefaultBackoff())
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init local pool")
		}
		wData := &worker.ServiceData{WorkerCount: 1, MsgSender: pool, Store: data.Store, Filer: filer,
			StepDelay: cfg.GetDuration("worker.stepDelay")}
		if wData.Analyzer, err = backends.Analyzer(ctx); err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init analyzer")
		}
		wm, err := worker.PrepareLocal(wData)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init local worker")
		}
		pool.Register(wm)
		pool.Start(ctx)
		defer pool.Shutdown()
		data.MsgSender = pool
		goapp.Log.Warn().Msg("local worker mode, status and inform messages are dropped")
	} else {
		data.MsgSender, err = backends.Sender(ctx)
		if err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't init gue sender")
		}
	}

	err = video.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
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

   video
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/prismwriting/prism"))
}
