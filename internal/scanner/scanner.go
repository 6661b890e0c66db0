// Package scanner implements the tick analytics engine: single-tick OI
// delta classification, moneyness filtering, and momentum trend detection
// over a trailing window.
package scanner

import (
	"time"

	"oiscanner/internal/logger"
	"oiscanner/internal/models"
	"oiscanner/internal/state"
)

// Config holds the alerting thresholds.
type Config struct {
	OIRocThreshold         float64
	MomentumWindow         time.Duration
	MinLotsSizeAlert       int
	MinLotsMomentum        int
	MomentumOIRocThreshold float64
	ATMBandRatio           float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		OIRocThreshold:         2.0,
		MomentumWindow:         5 * time.Minute,
		MinLotsSizeAlert:       100,
		MinLotsMomentum:        300,
		MomentumOIRocThreshold: 2.0,
		ATMBandRatio:           0.001,
	}
}

// Scanner normalizes raw tick records, updates the state store, and runs
// both alert paths. It is not safe for concurrent use: all ticks must flow
// through a single goroutine so that prev/current state stays meaningful.
type Scanner struct {
	reg    *models.Registry
	store  *state.Store
	config Config
	now    func() time.Time
}

// New creates a scanner over a registry and its state store.
func New(reg *models.Registry, store *state.Store, config Config) *Scanner {
	return &Scanner{
		reg:    reg,
		store:  store,
		config: config,
		now:    time.Now,
	}
}

// Ingest consumes one decoded tick record and returns zero or more
// findings. Records for unknown instruments or without a traded price are
// dropped. Futures ticks only feed the underlying price series and never
// produce findings themselves.
func (s *Scanner) Ingest(symbol string, price, oi *float64) []models.Finding {
	inst, ok := s.reg.Lookup(symbol)
	if !ok {
		logger.Debug("Dropping tick for untracked symbol %q", symbol)
		return nil
	}
	if price == nil {
		logger.Debug("Dropping tick for %s: no last trade price", symbol)
		return nil
	}

	now := s.now()
	tick := models.Tick{Symbol: symbol, Price: *price, At: now}

	if inst.Kind == models.KindFuture {
		s.store.ApplyFuture(inst.Underlying, tick)
		return nil
	}

	if oi == nil {
		logger.Debug("Dropping tick for %s: no open interest", symbol)
		return nil
	}
	tick.OI = *oi

	st, ok := s.store.ApplyOption(symbol, tick)
	if !ok {
		return nil
	}

	if st.OIPrev == 0 {
		logger.Info("%s: initializing option state", symbol)
		return nil
	}

	var findings []models.Finding
	if f, ok := s.checkSizeAlert(inst, st, now); ok {
		findings = append(findings, f)
	}
	if f, ok := s.checkMomentum(inst, st, now); ok {
		findings = append(findings, f)
	}
	return findings
}

// checkSizeAlert runs the single-tick OI delta path against the freshly
// updated state.
func (s *Scanner) checkSizeAlert(inst models.Instrument, st *models.InstrumentState, now time.Time) (models.Finding, bool) {
	oiDelta := st.OI - st.OIPrev
	if oiDelta == 0 {
		return models.Finding{}, false
	}
	priceDelta := st.Price - st.PricePrev
	oiRoc := ratePercent(oiDelta, st.OIPrev)
	if abs(oiRoc) <= s.config.OIRocThreshold {
		return models.Finding{}, false
	}
	logger.Debug("%s: OI RoC %.2f%% above %.2f%% threshold", inst.Symbol, oiRoc, s.config.OIRocThreshold)

	lots := lotsFromOIDelta(oiDelta, inst.LotSize)
	if lots <= s.config.MinLotsSizeAlert {
		return models.Finding{}, false
	}

	moneyness := s.moneyness(inst)
	if moneyness != models.ITM && moneyness != models.ATM {
		logger.Debug("%s: %s strike, alert suppressed", inst.Symbol, moneyness)
		return models.Finding{}, false
	}

	bucket := bucketForLots(lots)
	if bucket == models.BucketIgnore {
		return models.Finding{}, false
	}

	action := classifyAction(oiDelta, priceDelta)
	logger.Info("%s: %s, %d lots, bucket %s, action %s", inst.Symbol, moneyness, lots, bucket, action)

	f := models.Finding{
		Kind:       models.SizeAlert,
		Symbol:     inst.Symbol,
		Underlying: inst.Underlying,
		Label:      string(action),
		Bucket:     bucket,
		Moneyness:  moneyness,
		OIDelta:    oiDelta,
		OIRoc:      oiRoc,
		PriceDelta: priceDelta,
		Lots:       lots,
		DetectedAt: now,
	}
	f.Message = s.renderSizeAlert(inst, st, f)
	return f, true
}

// checkMomentum runs the trailing-window trend path and applies the
// same-trend suppression rule.
func (s *Scanner) checkMomentum(inst models.Instrument, st *models.InstrumentState, now time.Time) (models.Finding, bool) {
	trend, stats, ok := s.detectTrend(inst, st)
	if !ok {
		return models.Finding{}, false
	}

	if trend == st.LastTrend && now.Sub(st.LastTrendAt) < s.config.MomentumWindow {
		logger.Debug("%s: ongoing %s, alert suppressed", inst.Symbol, trend)
		return models.Finding{}, false
	}
	st.LastTrend = trend
	st.LastTrendAt = now

	logger.Info("%s: momentum trend detected: %s", inst.Symbol, trend)
	f := models.Finding{
		Kind:       models.MomentumAlert,
		Symbol:     inst.Symbol,
		Underlying: inst.Underlying,
		Label:      string(trend),
		Moneyness:  models.MoneynessNA,
		OIDelta:    stats.oiDelta,
		OIRoc:      stats.oiRoc,
		PriceDelta: stats.optionDelta,
		Lots:       stats.lots,
		DetectedAt: now,
	}
	f.Message = s.renderMomentumAlert(inst, trend, stats)
	return f, true
}

// ratePercent is delta/base*100 with a defined zero-denominator result.
func ratePercent(delta, base float64) float64 {
	if base == 0 {
		return 0.0
	}
	return delta / base * 100
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
