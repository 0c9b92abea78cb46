package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phytolab/orderport/config"
	"github.com/phytolab/orderport/internal/adminapi"
	"github.com/phytolab/orderport/internal/app"
	"github.com/phytolab/orderport/internal/storeapi"
	"github.com/phytolab/orderport/internal/webserver"
)

var (
	h        bool
	showVer  bool
	initdb   bool
	conffile string
)

// build-time injected
var (
	BuildVersion string = "dev"
	BuildTime    string
)

func init() {
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&showVer, "v", false, "print version")
	flag.BoolVar(&initdb, "initdb", false, "drop and recreate all database tables, then exit")
	flag.StringVar(&conffile, "c", "/etc/orderport.yml", "config file path")
}

func printVersion() {
	fmt.Printf("orderport %s (built %s)\n", BuildVersion, BuildTime)
}

func main() {
	flag.Parse()
	if h {
		flag.Usage()
		return
	}
	if showVer {
		printVersion()
		return
	}

	cfg := config.LoadConfig(conffile)
	_ = os.MkdirAll(cfg.System.Workdir, 0o755)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	webserver.Init(application)
	adminapi.Init()
	storeapi.Init()

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return webserver.Listen()
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			zap.S().Infof("received signal %s, shutting down", sig)
		case <-ctx.Done():
			return ctx.Err()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return webserver.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		zap.S().Error(err)
		os.Exit(1)
	}
}
