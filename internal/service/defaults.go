package service

import "time"

const (
	defaultFetchStep  uint64 = 2016
	defaultReportStep uint64 = 10_000

	defaultBatchLimit uint64 = 5000

	sleepDuration     = 5 * time.Second
	longSleepDuration = 1 * time.Minute

	statBufferSize = 100
)
