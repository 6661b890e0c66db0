// Package state owns the mutable per-instrument tracking data consumed by
// the scanner. All mutation happens on the single ingest goroutine.
package state

import (
	"time"

	"oiscanner/internal/models"
)

// Store holds one InstrumentState per tracked option and one FutureSeries
// per underlying. States are created for the full universe up front and
// never destroyed during the process lifetime.
type Store struct {
	window      time.Duration
	instruments map[string]*models.InstrumentState
	futures     map[string]*models.FutureSeries
}

// New builds a store covering the whole registry.
func New(reg *models.Registry, window time.Duration) *Store {
	s := &Store{
		window:      window,
		instruments: make(map[string]*models.InstrumentState, reg.Size()),
		futures:     make(map[string]*models.FutureSeries),
	}
	for _, symbol := range reg.Symbols() {
		s.instruments[symbol] = &models.InstrumentState{}
	}
	for _, underlying := range reg.Underlyings() {
		s.futures[underlying] = &models.FutureSeries{}
	}
	return s
}

// Window returns the configured momentum window duration.
func (s *Store) Window() time.Duration {
	return s.window
}

// Instrument returns the state for a tracked symbol.
func (s *Store) Instrument(symbol string) (*models.InstrumentState, bool) {
	st, ok := s.instruments[symbol]
	return st, ok
}

// Future returns the price series for an underlying.
func (s *Store) Future(underlying string) (*models.FutureSeries, bool) {
	fs, ok := s.futures[underlying]
	return fs, ok
}

// ApplyFuture records a future tick on the underlying's series. Zero or
// negative prices are ignored; the series keeps its last good value.
func (s *Store) ApplyFuture(underlying string, tick models.Tick) {
	fs, ok := s.futures[underlying]
	if !ok || tick.Price <= 0 {
		return
	}
	fs.Price = tick.Price
	fs.Window = append(fs.Window, models.FutureSample{At: tick.At, Price: tick.Price})
	fs.Window = pruneFutureWindow(fs.Window, tick.At, s.window)
}

// ApplyOption records an option tick: the momentum window gains a sample
// when both price and OI are positive, the window is pruned, and the
// prev/current fields rotate. The returned state reflects the tick.
func (s *Store) ApplyOption(symbol string, tick models.Tick) (*models.InstrumentState, bool) {
	st, ok := s.instruments[symbol]
	if !ok {
		return nil, false
	}
	if tick.Price > 0 && tick.OI > 0 {
		st.Window = append(st.Window, models.Sample{At: tick.At, Price: tick.Price, OI: tick.OI})
	}
	st.Window = PruneWindow(st.Window, tick.At, s.window)

	st.PricePrev, st.OIPrev = st.Price, st.OI
	st.Price, st.OI = tick.Price, tick.OI
	return st, true
}

// PruneWindow drops samples older than the trailing window. Samples are
// appended in arrival order, so only head removal is needed; pruning an
// already-pruned window is a no-op.
func PruneWindow(window []models.Sample, now time.Time, keep time.Duration) []models.Sample {
	cut := 0
	for cut < len(window) && now.Sub(window[cut].At) > keep {
		cut++
	}
	return window[cut:]
}

func pruneFutureWindow(window []models.FutureSample, now time.Time, keep time.Duration) []models.FutureSample {
	cut := 0
	for cut < len(window) && now.Sub(window[cut].At) > keep {
		cut++
	}
	return window[cut:]
}
