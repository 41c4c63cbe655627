package main

import (
	"context"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/prismwriting/prism/internal/pkg/result"
	"github.com/prismwriting/prism/internal/pkg/setup"
)

func main() {
	if err := setup.LoadEnv(); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &result.Data{}
	data.Port = cfg.GetInt("port")

	ctx := context.Background()
	backends := setup.NewBackends(cfg)
	defer backends.Close()

	var err error
	data.Reader, err = backends.Filer(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init file reader")
	}
	data.Store, err = backends.JobStore(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init job store")
	}

	if err := result.StartWebServer(data); err != nil {
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

   result
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/prismwriting/prism"))
}
