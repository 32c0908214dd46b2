package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reloader re-reads and applies the configuration.
type Reloader interface {
	ReloadConfig() error
}

// NewAPI builds the admin endpoint serving on addr. The http server is
// constructed up front so a Close always reaches the instance Run
// serves with, no matter which call comes first.
func NewAPI(reloader Reloader, addr string, enablePrometheus bool) API {
	api := &api{reloader: reloader}

	mux := http.NewServeMux()
	mux.HandleFunc("/reload", api.reloadHandler)
	if enablePrometheus {
		mux.Handle("/metrics", promhttp.Handler())
	}
	api.server = http.Server{Addr: addr, Handler: mux}
	return api
}

type API interface {
	Run() error
	Close() error
}

type api struct {
	reloader Reloader
	server   http.Server
}

func (api *api) Close() error {
	return api.server.Close()
}

func (api *api) Run() error {
	return api.server.ListenAndServe()
}

func (api *api) reloadHandler(w http.ResponseWriter, r *http.Request) {
	err := api.reloader.ReloadConfig()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	w.WriteHeader(200)
	fmt.Fprintln(w, "success")
}
