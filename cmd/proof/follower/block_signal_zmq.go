//go:build zmq

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

// recvTimeout bounds a single zmq receive so the listener notices context
// cancellation between notifications.
const recvTimeout = time.Second

// startBlockSignal subscribes to bitcoind's zmqpubhashblock endpoint and
// nudges the follower whenever a block hash arrives, cutting the tip poll
// delay to nothing when the chain moves.
func startBlockSignal(ctx context.Context, addr string, logger *zap.Logger) (<-chan struct{}, error) {
	if addr == "" {
		return nil, nil
	}

	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, fmt.Errorf("create zmq socket: %w", err)
	}
	if err := sub.SetSubscribe("hashblock"); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe hashblock: %w", err)
	}
	if err := sub.SetRcvtimeo(recvTimeout); err != nil {
		sub.Close()
		return nil, fmt.Errorf("set zmq receive timeout: %w", err)
	}
	if err := sub.Connect(addr); err != nil {
		sub.Close()
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}

	notify := make(chan struct{}, 1)
	go listenHashBlocks(ctx, sub, notify, logger)
	return notify, nil
}

// listenHashBlocks pumps hashblock notifications into notify, dropping
// signals while the follower is busy. Frames are topic, block hash,
// sequence number.
func listenHashBlocks(ctx context.Context, sub *zmq4.Socket, notify chan<- struct{}, logger *zap.Logger) {
	defer sub.Close()

	for ctx.Err() == nil {
		frames, err := sub.RecvMessageBytes(0)
		switch {
		case err == nil:
		case zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN):
			// Receive timeout; loop back to the context check.
			continue
		default:
			logger.Warn("zmq recv failed", zap.Error(err))
			time.Sleep(recvTimeout)
			continue
		}

		if len(frames) < 2 || len(frames[1]) != 32 {
			logger.Warn("skip malformed hashblock notification", zap.Int("frames", len(frames)))
			continue
		}
		logger.Debug("block notification", zap.String("hash", hex.EncodeToString(frames[1])))

		select {
		case notify <- struct{}{}:
		default:
		}
	}
}
