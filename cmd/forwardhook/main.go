// Package main is an application entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/Semior001/forwardhook/pkg/discovery"
	"github.com/Semior001/forwardhook/pkg/discovery/fileprovider"
	"github.com/Semior001/forwardhook/pkg/relay"
	"github.com/Semior001/forwardhook/pkg/relay/upstream"
	"github.com/cappuccinotm/slogx"
	"github.com/cappuccinotm/slogx/slogm"
	"github.com/jessevdk/go-flags"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
)

var opts struct {
	Addr string `short:"a" long:"addr" env:"ADDR" default:":8080" description:"Address to listen on"`
	File struct {
		Name          string        `long:"name"           env:"NAME"           default:"forwardhook.yml" description:"Config file name"                  `
		CheckInterval time.Duration `long:"check-interval" env:"CHECK_INTERVAL" default:"3s"              description:"Check interval for the config file"`
		Delay         time.Duration `long:"delay"          env:"DELAY"          default:"500ms"           description:"Delay before applying the changes" `
	} `group:"file" namespace:"file" env-namespace:"FILE"`
	Stdin     bool   `long:"stdin"      env:"STDIN"      description:"Read config from stdin instead of a file"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"User-Agent for forwarded requests"`
	Debug     bool   `long:"debug"      env:"DEBUG"      description:"Enable debug mode"`
}

var version = "unknown"

func getVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if ok {
		return bi.Main.Version
	}
	return version
}

func main() {
	_, _ = fmt.Fprintf(os.Stderr, "forwardhook %s\n", getVersion())

	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	setupLog(opts.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { // catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		sig := <-stop
		slog.Warn("caught signal", slog.Any("signal", sig))
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("failed to start forwardhook", slogx.Error(err))
	}
}

func setupLog(debug bool) {
	defer slog.Info("prepared logger", slog.Bool("debug", debug))
	handler := slog.Handler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if debug {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:     slog.LevelDebug,
			AddSource: true,
			NoColor:   !isatty.IsTerminal(os.Stderr.Fd()),
		})
	}

	handler = slogx.NewChain(handler,
		slogm.RequestID(),
		slogm.StacktraceOnError(),
		slogm.TrimAttrs(1024), // 1Kb
	)

	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context) error {
	provider := discovery.Provider(&fileprovider.File{
		FileName:      opts.File.Name,
		CheckInterval: opts.File.CheckInterval,
		Delay:         opts.File.Delay,
	})
	if opts.Stdin {
		provider = &fileprovider.Stdin{}
	}

	dsvc := &discovery.Service{Providers: []discovery.Provider{provider}}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("forwardhook/%s", getVersion())
	}

	fwd := &upstream.Client{
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: userAgent,
	}

	srv := relay.NewServer(dsvc, fwd,
		relay.Version(getVersion()),
		relay.Maybe(opts.Debug, relay.Debug()))

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		if err := dsvc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("discovery service: %w", err)
		}
		return nil
	})
	ewg.Go(func() error {
		if err := srv.Listen(opts.Addr); err != nil {
			return fmt.Errorf("relay server: %w", err)
		}
		return nil
	})
	ewg.Go(func() error {
		<-ctx.Done()
		srv.Close()
		return nil
	})

	if err := ewg.Wait(); err != nil {
		return err
	}

	return nil
}
