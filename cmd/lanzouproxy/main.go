package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lanzouproxy/lanzouproxy/internal/common/logtrace"
	"github.com/lanzouproxy/lanzouproxy/internal/gateway/config"
	"github.com/lanzouproxy/lanzouproxy/internal/gateway/server"
	"github.com/lanzouproxy/lanzouproxy/internal/gateway/session"
	"github.com/lanzouproxy/lanzouproxy/internal/metrics"
)

const DefaultConfigFile = "/etc/lanzouproxy/lanzouproxy.conf"

type cmdoptions struct {
	configFile string
	useDefault bool
	version    bool
}

func main() {
	opt := parseFlags()
	if opt.version {
		fmt.Println("lanzouproxy " + server.Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opt); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, opt cmdoptions) error {
	if opt.useDefault {
		if err := config.SetConfig(config.DefaultConfig()); err != nil {
			return err
		}
	} else if err := config.LoadConfig(opt.configFile); err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	cfg := config.Config()

	if err := logtrace.InitLogger(cfg.Log.Level, cfg.Log.Pretty); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	slog := log.With().Str("state", "init").Logger()
	slog.Info().
		Str("config_file", opt.configFile).
		Str("upstream", cfg.Upstream.BaseURL).
		Msg("configuration loaded")

	gw := session.NewGateway(server.NewPortalClient(&cfg.Upstream, nil))
	s, err := server.CreateNewServer(gw)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	s.MountHandlers()

	servers := []*http.Server{{
		Addr:              cfg.ListenAddr(),
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}}
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr(),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			slog.Info().Str("addr", srv.Addr).Msg("server started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info().Msg("shutting down")
		for _, srv := range servers {
			shutdown(srv)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info().Msg("server stopped")
	return nil
}

func shutdown(srv *http.Server) {
	// Give outstanding requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Str("addr", srv.Addr).Msg("could not stop server gracefully")
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("could not stop server")
		}
	}
}

func parseFlags() cmdoptions {
	var opt cmdoptions
	flag.StringVar(&opt.configFile, "config", DefaultConfigFile, "Path to the config file")
	flag.BoolVar(&opt.useDefault, "default-config", false, "Run with built-in defaults instead of a config file")
	flag.BoolVar(&opt.version, "version", false, "Print the version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
