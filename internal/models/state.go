package models

import "time"

// InstrumentState holds the mutable per-instrument tracking data. It is
// created for the full universe at startup and mutated only by the ingest
// path, so no locking is needed.
//
// OIPrev == 0 marks an uninitialized state: the first observed tick has no
// prior reference point and must not produce a delta-based alert.
type InstrumentState struct {
	Price     float64
	PricePrev float64
	OI        float64
	OIPrev    float64

	// Window holds the trailing momentum samples, append-only and pruned
	// from the head on every update.
	Window []Sample

	LastTrend   TrendKind
	LastTrendAt time.Time
}

// FutureSeries tracks the latest price and trailing window of one
// underlying future.
type FutureSeries struct {
	Price  float64
	Window []FutureSample
}
