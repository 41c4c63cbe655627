package main

import (
	"context"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/gommon/color"
	"github.com/prismwriting/prism/internal/pkg/auth"
	"github.com/prismwriting/prism/internal/pkg/portal"
	"github.com/prismwriting/prism/internal/pkg/postgres"
	"github.com/prismwriting/prism/internal/pkg/redisdb"
	"github.com/prismwriting/prism/internal/pkg/setup"
)

func main() {
	if err := setup.LoadEnv(); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't load .env")
	}
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	cfg.SetDefault("auth.accessTTL", 15*time.Minute)
	cfg.SetDefault("auth.refreshTTL", 7*24*time.Hour)
	cfg.SetDefault("newsletter.doubleOptIn", true)

	data := &portal.Data{}
	data.Port = cfg.GetInt("port")
	data.RefreshTTL = cfg.GetDuration("auth.refreshTTL")
	data.SecureCookies = cfg.GetString("mode") == "production"
	data.DoubleOptIn = cfg.GetBool("newsletter.doubleOptIn")

	ctx := context.Background()
	backends := setup.NewBackends(cfg)
	defer backends.Close()

	pool, err := backends.DBPool(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	if data.DB, err = postgres.NewDB(pool); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}
	if data.Tokens, err = auth.NewTokens(cfg.GetString("auth.secret"), cfg.GetDuration("auth.accessTTL")); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init tokens")
	}
	rdb, err := backends.Redis(ctx)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init redis")
	}
	if data.Refresh, err = redisdb.NewRefreshTokens(rdb, data.RefreshTTL); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init refresh token store")
	}
	if data.MsgSender, err = backends.Sender(ctx); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gue sender")
	}

	if err := portal.StartWebServer(data); err != nil {
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

   portal
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/prismwriting/prism"))
}
