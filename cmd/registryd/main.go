// Command registryd is the single-binary entrypoint for the crate registry
// (spec.md §6): it loads configuration, opens the index repository and blob
// store, and serves the Cargo-protocol HTTP surface plus the placeholder web
// UI.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/quay/cargo-registry/internal/registry/blobstore"
	"github.com/quay/cargo-registry/internal/registry/config"
	"github.com/quay/cargo-registry/internal/registry/dbpool"
	"github.com/quay/cargo-registry/internal/registry/httpapi"
	"github.com/quay/cargo-registry/internal/registry/publish"
	"github.com/quay/cargo-registry/internal/registry/vcs"
	"github.com/quay/cargo-registry/internal/registry/webui"
	"github.com/quay/cargo-registry/pkg/poolstats"
	"github.com/quay/cargo-registry/pkg/tracing"
)

const appName = "registryd"

func main() {
	ctx := context.Background()
	debug := strings.EqualFold(os.Getenv("REGISTRYD_ENV"), "debug")

	log := newLogger(debug)

	settings, err := config.Load(appName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := tracing.Bootstrap(ctx, settings.Tracing.OTLP.Endpoint != "", settings.Tracing.OTLP.Endpoint); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap tracing")
	}
	defer tracing.Shutdown(ctx)

	identity := vcs.Identity{Name: "registry", Email: "registry@localhost"}
	repo, err := vcs.Open(settings.Index.Location, identity, settings.Index.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open index repository")
	}

	blobs := blobstore.New(settings.Storage.Location)
	pipeline := publish.New(repo, blobs)

	if settings.Database.ConnString == "" {
		log.Warn().Msg("no database connection string configured; owner/user data is unavailable")
	} else {
		pool, err := dbpool.Open(ctx, settings.Database.ConnString)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database pool")
		}
		if _, err := dbpool.Init(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to run database migrations")
		}
		defer pool.Close()

		prometheus.MustRegister(poolstats.NewCollector(pool, appName))
	}

	log.Warn().Msg("no authentication is configured; any caller may publish or yank crates")

	mux := http.NewServeMux()
	webui.NewHandler().Register(mux)
	mux.Handle("/api/v1/crates/", httpapi.NewRouter(httpapi.NewServer(pipeline), log))
	mux.Handle("GET /metrics", promhttp.Handler())

	addr := listenAddr(settings.Port, debug)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return log.WithContext(ctx) },
	}

	log.Info().Str("addr", addr).Bool("debug", debug).Msg("starting http server")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("http server exited")
	}
}

func newLogger(debug bool) zerolog.Logger {
	if debug {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: false}).
			With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// listenAddr binds every interface in release and loopback only in debug
// (spec.md §6).
func listenAddr(port uint16, debug bool) string {
	host := "0.0.0.0"
	if debug {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}
