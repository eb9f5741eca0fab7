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
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/export"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/headers"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/metrics"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
	rpcclient2 "github.com/goodnatureofminers/chainproof7000-backend/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/service"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/superchain"
	"github.com/goodnatureofminers/chainproof7000-backend/internal/transport"
	"github.com/goodnatureofminers/chainproof7000-backend/pkg/batcher"
)

const (
	statFlushSize     = 50
	statFlushInterval = time.Minute
	statFlushRPS      = 1
)

type config struct {
	Addr          string        `long:"addr" env:"PROOF_FOLLOWER_ADDR" description:"address for the proof API" default:":8000"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"PROOF_FOLLOWER_CLICKHOUSE_DSN" description:"ClickHouse DSN; stats are discarded when empty"`
	Network       model.Network `long:"network" env:"PROOF_FOLLOWER_NETWORK" description:"network name" required:"true"`

	RPCURL      string        `long:"rpc-url" env:"PROOF_FOLLOWER_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser     string        `long:"rpc-user" env:"PROOF_FOLLOWER_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword string        `long:"rpc-password" env:"PROOF_FOLLOWER_RPC_PASSWORD" description:"Bitcoin RPC password"`
	HTTPTimeout time.Duration `long:"http-timeout" env:"PROOF_FOLLOWER_HTTP_TIMEOUT" description:"HTTP timeout for RPC requests" default:"30s"`
	RPCWorkers  int           `long:"rpc-workers" env:"PROOF_FOLLOWER_RPC_WORKERS" description:"concurrent header fetches" default:"4"`
	ZMQAddr     string        `long:"zmq-addr" env:"PROOF_FOLLOWER_ZMQ_ADDR" description:"bitcoind zmq hashblock endpoint"`

	SecurityParam   int `long:"security-param" env:"PROOF_FOLLOWER_SECURITY_PARAM" description:"blocks per level required for confidence" default:"208"`
	UnstableLen     int `long:"unstable-len" env:"PROOF_FOLLOWER_UNSTABLE_LEN" description:"tip blocks treated as unstable" default:"323"`
	UncompressedLen int `long:"uncompressed-len" env:"PROOF_FOLLOWER_UNCOMPRESSED_LEN" description:"tip blocks kept raw" default:"4032"`

	PollInterval time.Duration `long:"poll-interval" env:"PROOF_FOLLOWER_POLL_INTERVAL" description:"delay between tip polls"`
	IdleInterval time.Duration `long:"idle-interval" env:"PROOF_FOLLOWER_IDLE_INTERVAL" description:"delay while the chain tip is unchanged"`
	BatchLimit   uint64        `long:"batch-limit" env:"PROOF_FOLLOWER_BATCH_LIMIT" description:"max heights folded per extension"`

	ProofPath string `long:"proof-path" env:"PROOF_FOLLOWER_PROOF_PATH" description:"split proof JSON to resume from"`
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
		logger.Fatal("proof follower failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
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

	stats, closeStats, err := newStatSink(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init stat sink: %w", err)
	}
	defer closeStats()

	params, initial, err := loadInitialProof(cfg, logger)
	if err != nil {
		return err
	}

	blockSignal, err := startBlockSignal(ctx, cfg.ZMQAddr, logger)
	if err != nil {
		return fmt.Errorf("init block signal: %w", err)
	}

	svc, err := service.NewFollowerService(
		source,
		stats,
		metrics.NewFollower(cfg.Network),
		service.FollowerConfig{
			Network:      cfg.Network,
			Params:       params,
			PollInterval: cfg.PollInterval,
			IdleInterval: cfg.IdleInterval,
			BatchLimit:   cfg.BatchLimit,
		},
		logger,
		initial,
		blockSignal,
	)
	if err != nil {
		return err
	}

	go func() {
		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("follow loop failed", zap.Error(err))
		}
	}()

	return serveAPI(ctx, cfg.Addr, svc, logger)
}

// loadInitialProof reads the resume file when one is configured. The file's
// parameters win over the flags, since a proof is only extendable with the
// parameters that built it.
func loadInitialProof(cfg config, logger *zap.Logger) (superchain.Params, []superchain.Block, error) {
	params := superchain.Params{
		SecurityParam:   cfg.SecurityParam,
		UnstableLen:     cfg.UnstableLen,
		UncompressedLen: cfg.UncompressedLen,
	}
	if cfg.ProofPath == "" {
		return params, nil, nil
	}

	split, fileParams, err := export.ReadProofFile(cfg.ProofPath)
	if err != nil {
		return superchain.Params{}, nil, fmt.Errorf("load initial proof: %w", err)
	}
	if fileParams != params {
		logger.Warn("proof file parameters differ from flags; using the file's",
			zap.Int("security_param", fileParams.SecurityParam),
			zap.Int("unstable_len", fileParams.UnstableLen),
			zap.Int("uncompressed_len", fileParams.UncompressedLen))
	}

	initial := split.Reassemble().Blocks()
	logger.Info("resuming from proof file",
		zap.String("path", cfg.ProofPath),
		zap.Int("proof_length", len(initial)))
	return fileParams, initial, nil
}

func newStatSink(ctx context.Context, cfg config, logger *zap.Logger) (service.StatSink, func(), error) {
	noop := func() {}
	if cfg.ClickhouseDSN == "" {
		logger.Info("no ClickHouse DSN configured; proof stats will be discarded")
		return service.NopStatSink{}, noop, nil
	}

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return nil, noop, err
	}

	b := batcher.New(logger.Named("statBatcher"), repo.InsertProofStats, statFlushSize, statFlushInterval, statFlushRPS)
	b.Start(ctx)
	cleanup := func() {
		b.Stop()
		if err := repo.Close(); err != nil {
			logger.Warn("close clickhouse repository", zap.Error(err))
		}
	}
	return service.NewBatcherStatSink(b), cleanup, nil
}

func serveAPI(ctx context.Context, addr string, svc *service.FollowerService, logger *zap.Logger) error {
	mux := http.NewServeMux()
	transport.NewProofHandler(svc, logger).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("starting http server", zap.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
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
