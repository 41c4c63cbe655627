package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/airenas/go-app/pkg/goapp"

	_ "net/http/pprof"
)

// RunPerfEndpoint serves pprof handlers on debug.port, blocks until the server fails
func RunPerfEndpoint() {
	port := goapp.Config.GetInt("debug.port")
	if port <= 0 {
		goapp.Log.Info().Msg("no debug.port provided, skip pprof endpoint")
		return
	}
	goapp.Log.Info().Int("port", port).Msg("starting debug http endpoint")
	srv := &http.Server{Addr: ":" + strconv.Itoa(port), ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		goapp.Log.Error().Err(err).Msg("can't start debug endpoint")
	}
}
