package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
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
	"github.com/goodnatureofminers/chainproof7000-backend/internal/rarity"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/service"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
)

type config struct {
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"PROOF_COMPRESSOR_CLICKHOUSE_DSN" description:"ClickHouse DSN for proof stats"`
	StatsFile     string        `long:"stats-file" env:"PROOF_COMPRESSOR_STATS_FILE" description:"append proof stats to this JSON lines file"`
	Network       model.Network `long:"network" env:"PROOF_COMPRESSOR_NETWORK" description:"network name" required:"true"`
	Source        string        `long:"source" env:"PROOF_COMPRESSOR_SOURCE" description:"header source: node, file, random or scripted" default:"node"`

	RPCURL      string        `long:"rpc-url" env:"PROOF_COMPRESSOR_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser     string        `long:"rpc-user" env:"PROOF_COMPRESSOR_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword string        `long:"rpc-password" env:"PROOF_COMPRESSOR_RPC_PASSWORD" description:"Bitcoin RPC password"`
	HTTPTimeout time.Duration `long:"http-timeout" env:"PROOF_COMPRESSOR_HTTP_TIMEOUT" description:"HTTP timeout for RPC requests" default:"30s"`
	RPCWorkers  int           `long:"rpc-workers" env:"PROOF_COMPRESSOR_RPC_WORKERS" description:"concurrent header fetches" default:"8"`

	HeadersFile string `long:"headers-file" env:"PROOF_COMPRESSOR_HEADERS_FILE" description:"JSON header file for the file source"`

	RandomBlocks uint64  `long:"random-blocks" env:"PROOF_COMPRESSOR_RANDOM_BLOCKS" description:"chain length for the random source" default:"100000"`
	RandomProb   float64 `long:"random-prob" env:"PROOF_COMPRESSOR_RANDOM_PROB" description:"per-level halving probability for the random source" default:"0.5"`
	RandomSeed   int64   `long:"random-seed" env:"PROOF_COMPRESSOR_RANDOM_SEED" description:"seed for the random source" default:"1"`

	Levels string `long:"levels" env:"PROOF_COMPRESSOR_LEVELS" description:"comma-separated per-height block levels for the scripted source"`

	SecurityParam   int `long:"security-param" env:"PROOF_COMPRESSOR_SECURITY_PARAM" description:"blocks per level required for confidence" default:"208"`
	UnstableLen     int `long:"unstable-len" env:"PROOF_COMPRESSOR_UNSTABLE_LEN" description:"tip blocks treated as unstable" default:"323"`
	UncompressedLen int `long:"uncompressed-len" env:"PROOF_COMPRESSOR_UNCOMPRESSED_LEN" description:"tip blocks kept raw" default:"4032"`

	StartHeight uint64 `long:"start-height" env:"PROOF_COMPRESSOR_START_HEIGHT" description:"first height folded into the proof"`
	BreakAt     uint64 `long:"break-at" env:"PROOF_COMPRESSOR_BREAK_AT" description:"stop at this height instead of the chain tip"`
	FetchStep   uint64 `long:"fetch-step" env:"PROOF_COMPRESSOR_FETCH_STEP" description:"heights per source request"`
	ReportStep  uint64 `long:"report-step" env:"PROOF_COMPRESSOR_REPORT_STEP" description:"heights between status reports"`
	ProofPath   string `long:"proof-path" env:"PROOF_COMPRESSOR_PROOF_PATH" description:"write the final split proof JSON here"`
	Rarity      bool   `long:"rarity" env:"PROOF_COMPRESSOR_RARITY" description:"log observed vs expected superblock counts for the raw suffix"`

	Quiet       bool   `long:"quiet" env:"PROOF_COMPRESSOR_QUIET" description:"log warnings and errors only"`
	MetricsAddr string `long:"metrics-addr" env:"PROOF_COMPRESSOR_METRICS_ADDR" description:"address for metrics server" default:":2112"`
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
	if cfg.Quiet {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("proof compressor failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	source, cleanup, err := newHeaderSource(cfg)
	if err != nil {
		return fmt.Errorf("init header source: %w", err)
	}
	defer cleanup()

	stats, closeStats, err := newStatSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("init stat sink: %w", err)
	}
	defer closeStats()

	svc, err := service.NewCompressorService(
		source,
		stats,
		metrics.NewCompressor(cfg.Network),
		service.CompressorConfig{
			Network: cfg.Network,
			Params: superchain.Params{
				SecurityParam:   cfg.SecurityParam,
				UnstableLen:     cfg.UnstableLen,
				UncompressedLen: cfg.UncompressedLen,
			},
			StartHeight: cfg.StartHeight,
			BreakAt:     cfg.BreakAt,
			FetchStep:   cfg.FetchStep,
			ReportStep:  cfg.ReportStep,
			ProofPath:   cfg.ProofPath,
		},
		logger,
	)
	if err != nil {
		return err
	}
	if err := svc.Run(ctx); err != nil {
		return err
	}

	if cfg.Rarity {
		logRarity(logger, svc.Proof(), svc.Params())
	}
	return nil
}

// logRarity reports the level distribution of the proof's trailing raw
// window, the only region the geometric model applies to.
func logRarity(logger *zap.Logger, blocks []superchain.Block, params superchain.Params) {
	window := params.UnstableLen + params.UncompressedLen
	if window > len(blocks) {
		window = len(blocks)
	}
	if window == 0 {
		logger.Warn("proof has no raw suffix; skipping rarity report")
		return
	}

	report := rarity.Analyze(blocks[len(blocks)-window:])
	logger.Info("suffix level distribution",
		zap.Int("blocks", report.Blocks),
		zap.Int("max_level", report.MaxLevel),
		zap.Int("total_levels", report.TotalLevels))
	for _, stat := range report.Levels {
		logger.Info("level rarity",
			zap.Int("level", stat.Level),
			zap.Int("observed", stat.Observed),
			zap.String("expected", formatFixed(stat.Expected)))
	}
}

// formatFixed renders a 1/Scale fixed-point count as a decimal string.
func formatFixed(v int64) string {
	return fmt.Sprintf("%d.%04d", v/rarity.Scale, v%rarity.Scale)
}

func newHeaderSource(cfg config) (service.HeaderSource, func(), error) {
	noop := func() {}
	switch cfg.Source {
	case "node":
		rpcClient, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword, cfg.HTTPTimeout)
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() {
			rpcClient.Shutdown()
			rpcClient.WaitForShutdown()
		}
		rpc := rpcclient2.NewObservedClient(rpcClient, metrics.NewRPCClient(cfg.Network))
		return headers.NewNodeSource(rpc, cfg.RPCWorkers), cleanup, nil
	case "file":
		if cfg.HeadersFile == "" {
			return nil, noop, errors.New("headers file is required for the file source")
		}
		source, err := headers.NewFileSource(cfg.HeadersFile)
		return source, noop, err
	case "random":
		source, err := headers.NewRandomSource(cfg.RandomProb, cfg.RandomSeed, cfg.RandomBlocks)
		return source, noop, err
	case "scripted":
		levels, err := parseLevels(cfg.Levels)
		if err != nil {
			return nil, noop, err
		}
		return headers.NewScriptedSource(levels), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown header source %q", cfg.Source)
	}
}

// parseLevels turns "0,1,0,2" into the per-height level script.
func parseLevels(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("levels are required for the scripted source")
	}
	parts := strings.Split(raw, ",")
	levels := make([]int, 0, len(parts))
	for _, part := range parts {
		level, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse level %q: %w", part, err)
		}
		if level < 0 {
			return nil, fmt.Errorf("level %d is negative", level)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func newStatSink(cfg config, logger *zap.Logger) (service.StatSink, func(), error) {
	cleanup := func() {}
	var sinks []service.StatSink

	if cfg.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if err := repo.Close(); err != nil {
				logger.Warn("close clickhouse repository", zap.Error(err))
			}
		}
		sinks = append(sinks, service.NewRepositoryStatSink(repo, 0))
	}

	if cfg.StatsFile != "" {
		file, err := service.NewFileStatSink(cfg.StatsFile)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closeRepo := cleanup
		cleanup = func() {
			if err := file.Close(); err != nil {
				logger.Warn("close stats file", zap.Error(err))
			}
			closeRepo()
		}
		sinks = append(sinks, file)
	}

	switch len(sinks) {
	case 0:
		logger.Info("no stat sink configured; proof stats will be discarded")
		return service.NopStatSink{}, cleanup, nil
	case 1:
		return sinks[0], cleanup, nil
	default:
		return service.NewMultiStatSink(sinks...), cleanup, nil
	}
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
