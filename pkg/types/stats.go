package types

import "time"

// PersistenceStats carries the facade's monotone counters. A copy is
// returned to callers; the live struct stays behind the facade's mutex.
type PersistenceStats struct {
	TotalSaves      uint64
	SuccessfulSaves uint64
	FailedSaves     uint64
	TotalLoads      uint64
	SuccessfulLoads uint64
	FailedLoads     uint64
	CacheHits       uint64
	CacheMisses     uint64
	AvgSaveTime     time.Duration
	AvgLoadTime     time.Duration
	LastSaveTime    time.Time
	LastLoadTime    time.Time
}

// ConnectionStats carries one connection's query counters.
type ConnectionStats struct {
	TotalQueries      uint64
	SuccessfulQueries uint64
	FailedQueries     uint64
	TotalQueryTime    time.Duration
	LastQueryTime     time.Time
}
