package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/headers"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/metrics"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
	rpcclient2 "github.com/goodnatureofminers/chainproof7000-backend/internal/pkg/btcd/rpcclient"
)

type config struct {
	OutPath string `long:"out" env:"PROOF_EXPORTER_OUT" description:"write the header JSON array here" required:"true"`

	RPCURL      string        `long:"rpc-url" env:"PROOF_EXPORTER_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser     string        `long:"rpc-user" env:"PROOF_EXPORTER_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword string        `long:"rpc-password" env:"PROOF_EXPORTER_RPC_PASSWORD" description:"Bitcoin RPC password"`
	HTTPTimeout time.Duration `long:"http-timeout" env:"PROOF_EXPORTER_HTTP_TIMEOUT" description:"HTTP timeout for RPC requests" default:"30s"`
	RPCWorkers  int           `long:"rpc-workers" env:"PROOF_EXPORTER_RPC_WORKERS" description:"concurrent header fetches" default:"8"`

	Network   model.Network `long:"network" env:"PROOF_EXPORTER_NETWORK" description:"network label for metrics" default:"mainnet"`
	BreakAt   uint64        `long:"break-at" env:"PROOF_EXPORTER_BREAK_AT" description:"stop at this height instead of the chain tip"`
	FetchStep uint64        `long:"fetch-step" env:"PROOF_EXPORTER_FETCH_STEP" description:"heights per fetch round" default:"2016"`

	MetricsAddr string `long:"metrics-addr" env:"PROOF_EXPORTER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("header export failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	rpcClient, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	defer func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}()

	rpc := rpcclient2.NewObservedClient(rpcClient, metrics.NewRPCClient(cfg.Network))
	source := headers.NewNodeSource(rpc, cfg.RPCWorkers)

	target, err := source.LatestHeight(ctx)
	if err != nil {
		return fmt.Errorf("latest height: %w", err)
	}
	if cfg.BreakAt > 0 && cfg.BreakAt < target {
		target = cfg.BreakAt
	}
	step := cfg.FetchStep
	if step == 0 {
		step = 2016
	}

	logger.Info("exporting chain headers",
		zap.Uint64("target_height", target),
		zap.String("out", cfg.OutPath))

	var dump []headers.Header
	for next := uint64(0); next <= target; {
		if err := ctx.Err(); err != nil {
			return err
		}
		to := next + step - 1
		if to > target || to < next {
			to = target
		}
		chunk, err := source.FetchRange(ctx, next, to)
		if err != nil {
			return fmt.Errorf("fetch headers %d..%d: %w", next, to, err)
		}
		dump = append(dump, chunk...)
		logger.Debug("fetched headers", zap.Uint64("from", next), zap.Uint64("to", to))
		next = to + 1
	}

	if err := headers.WriteFile(cfg.OutPath, dump); err != nil {
		return err
	}
	logger.Info("headers exported", zap.Int("count", len(dump)), zap.String("out", cfg.OutPath))
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string, timeout time.Duration) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	cfg := &rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}
	//if timeout > 0 {
	//	HTTPTimeout = timeout
	//}

	return rpcclient.New(cfg, nil)
}
