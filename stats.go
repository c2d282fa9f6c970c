package redis

import (
	"sync/atomic"
	"time"
)

// PoolStats contains statistics about a connection pool.
// All fields are plain values in a snapshot; collection is atomic.
type PoolStats struct {
	// Lifetime counters
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait
	CreatedConns      uint64 // Total connections created
	DestroyedConns    uint64 // Total connections destroyed
	AcquireErrors     uint64 // Failed acquire attempts
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	// Current state gauges
	TotalConns  int32 // Connections in pool (active + idle)
	IdleConns   int32 // Idle connections available
	ActiveConns int32 // Connections currently in use
}

// poolStatsCollector accumulates pool counters with atomics.
type poolStatsCollector struct {
	acquires      atomic.Uint64
	acquireWaits  atomic.Uint64
	acquireErrors atomic.Uint64
	created       atomic.Uint64
	destroyed     atomic.Uint64
	waitTimeNs    atomic.Uint64
}

func (s *poolStatsCollector) recordAcquire()      { s.acquires.Add(1) }
func (s *poolStatsCollector) recordAcquireError() { s.acquireErrors.Add(1) }
func (s *poolStatsCollector) recordCreate()       { s.created.Add(1) }
func (s *poolStatsCollector) recordDestroy()      { s.destroyed.Add(1) }

func (s *poolStatsCollector) recordAcquireWait(d time.Duration) {
	s.acquireWaits.Add(1)
	s.waitTimeNs.Add(uint64(d.Nanoseconds()))
}

func (s *poolStatsCollector) snapshot() PoolStats {
	return PoolStats{
		AcquireCount:      s.acquires.Load(),
		AcquireWaitCount:  s.acquireWaits.Load(),
		AcquireErrors:     s.acquireErrors.Load(),
		CreatedConns:      s.created.Load(),
		DestroyedConns:    s.destroyed.Load(),
		AcquireWaitTimeNs: s.waitTimeNs.Load(),
	}
}

// ClientStats contains statistics about client operations.
type ClientStats struct {
	Gets       uint64 // GET commands issued
	Hits       uint64 // GETs that found the key
	Misses     uint64 // GETs that did not
	Sets       uint64 // Successful SETs
	Adds       uint64 // Successful SET NX
	Deletes    uint64 // Successful DELs
	Increments uint64 // Successful INCRBY/DECRBY
	Errors     uint64 // Failed operations of any kind
}

type clientStatsCollector struct {
	gets       atomic.Uint64
	hits       atomic.Uint64
	misses     atomic.Uint64
	sets       atomic.Uint64
	adds       atomic.Uint64
	deletes    atomic.Uint64
	increments atomic.Uint64
	errors     atomic.Uint64
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{}
}

func (s *clientStatsCollector) recordGet(hit bool) {
	s.gets.Add(1)
	if hit {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
}

func (s *clientStatsCollector) recordSet()       { s.sets.Add(1) }
func (s *clientStatsCollector) recordAdd()       { s.adds.Add(1) }
func (s *clientStatsCollector) recordDelete()    { s.deletes.Add(1) }
func (s *clientStatsCollector) recordIncrement() { s.increments.Add(1) }
func (s *clientStatsCollector) recordError()     { s.errors.Add(1) }

func (s *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Gets:       s.gets.Load(),
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		Sets:       s.sets.Load(),
		Adds:       s.adds.Load(),
		Deletes:    s.deletes.Load(),
		Increments: s.increments.Load(),
		Errors:     s.errors.Load(),
	}
}
