package scanner

import (
	"time"

	"oiscanner/internal/models"
)

// trendStats carries the window deltas behind a momentum verdict.
type trendStats struct {
	start, end time.Time
	duration   time.Duration

	startOI, endOI, oiDelta             float64
	startOption, endOption, optionDelta float64
	startFuture, endFuture, futureDelta float64

	lots  int
	oiRoc float64
}

// detectTrend analyzes the instrument's trailing window against the
// underlying future's series and returns one of the four momentum verdicts,
// or no verdict when the window is too young, the future data does not
// cover the period, the size/rate gates fail, or the option and future
// moved inconsistently.
func (s *Scanner) detectTrend(inst models.Instrument, st *models.InstrumentState) (models.TrendKind, trendStats, bool) {
	window := st.Window
	if len(window) < 2 {
		return models.TrendNone, trendStats{}, false
	}

	first, last := window[0], window[len(window)-1]
	duration := last.At.Sub(first.At)
	if duration < s.config.MomentumWindow/2 {
		return models.TrendNone, trendStats{}, false
	}

	fs, ok := s.store.Future(inst.Underlying)
	if !ok || len(fs.Window) == 0 {
		return models.TrendNone, trendStats{}, false
	}
	startFuture, ok := futurePriceAtOrAfter(fs.Window, first.At)
	if !ok {
		return models.TrendNone, trendStats{}, false
	}
	endFuture := fs.Window[len(fs.Window)-1].Price

	stats := trendStats{
		start:       first.At,
		end:         last.At,
		duration:    duration,
		startOI:     first.OI,
		endOI:       last.OI,
		oiDelta:     last.OI - first.OI,
		startOption: first.Price,
		endOption:   last.Price,
		optionDelta: last.Price - first.Price,
		startFuture: startFuture,
		endFuture:   endFuture,
		futureDelta: endFuture - startFuture,
	}

	stats.lots = lotsFromOIDelta(stats.oiDelta, inst.LotSize)
	if stats.lots <= s.config.MinLotsMomentum {
		return models.TrendNone, trendStats{}, false
	}
	stats.oiRoc = ratePercent(stats.oiDelta, stats.startOI)
	if abs(stats.oiRoc) <= s.config.MomentumOIRocThreshold {
		return models.TrendNone, trendStats{}, false
	}

	isCall := inst.Right == models.RightCall
	trend := models.TrendNone

	switch {
	case stats.futureDelta > 0:
		// Uptrend narrative: calls must gain, puts must lose.
		if (isCall && stats.optionDelta > 0) || (!isCall && stats.optionDelta < 0) {
			if stats.oiDelta > 0 {
				trend = models.TrendStrongUptrend
			} else if stats.oiDelta < 0 {
				trend = models.TrendWeakUptrend
			}
		}
	case stats.futureDelta < 0:
		if (isCall && stats.optionDelta < 0) || (!isCall && stats.optionDelta > 0) {
			if stats.oiDelta > 0 {
				trend = models.TrendStrongDowntrend
			} else if stats.oiDelta < 0 {
				trend = models.TrendWeakDowntrend
			}
		}
	}

	if trend == models.TrendNone {
		return models.TrendNone, trendStats{}, false
	}
	return trend, stats, true
}

// futurePriceAtOrAfter returns the earliest future sample not older than
// the option window's start.
func futurePriceAtOrAfter(window []models.FutureSample, at time.Time) (float64, bool) {
	for _, sample := range window {
		if !sample.At.Before(at) {
			return sample.Price, true
		}
	}
	return 0, false
}
