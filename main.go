// Command taikou5dxls is a language server for taikou5dx event scripts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tarot-shogun/taikou5dxls/internal/catalog"
	"github.com/tarot-shogun/taikou5dxls/internal/config"
	lsserver "github.com/tarot-shogun/taikou5dxls/internal/server"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp/server"
)

const lsName = "taikou5dxls"

var version = "0.1.0"

var log = commonlog.GetLogger(lsName)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", lsName, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "configuration file (default "+config.DefaultPath+" if present)")
		transport  = flag.String("transport", "", "transport: stdio, tcp or websocket")
		address    = flag.String("address", "", "listen address for the tcp and websocket transports")
		verbosity  = flag.Int("v", 0, "log verbosity")
		debug      = flag.Bool("debug", false, "log protocol messages")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "transport":
			cfg.Server.Transport = *transport
		case "address":
			cfg.Server.Address = *address
		case "v":
			cfg.Log.Verbosity = *verbosity
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	var logFile *string
	if cfg.Log.File != "" {
		logFile = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, logFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := lsserver.New(lsserver.Options{
		Name:      lsName,
		Version:   version,
		Preselect: cfg.Completion.Preselect,
	})
	if path := cfg.Catalog.Path; path != "" {
		if err := catalog.LoadCustomFile(path); err != nil {
			log.Error(err.Error())
		}
		if cfg.Catalog.Watch {
			if err := catalog.Watch(ctx, path, func(err error) {
				handler.CatalogReloaded(path, err)
			}); err != nil {
				return err
			}
		}
	}

	s := server.NewServer(handler, lsName, *debug)
	s.Context = ctx

	log.Infof("starting %s %s on %s", lsName, version, cfg.Server.Transport)
	switch cfg.Server.Transport {
	case "tcp":
		return s.RunTCP(cfg.Server.Address)
	case "websocket":
		return s.RunWebSocket(cfg.Server.Address)
	default:
		return s.RunStdio()
	}
}
