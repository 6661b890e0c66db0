package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"oiscanner/internal/models"
)

// Alert timestamps are rendered in exchange time.
var alertLocation = loadAlertLocation()

func loadAlertLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.Local
	}
	return loc
}

func strikeLabel(inst models.Instrument) string {
	return strconv.FormatFloat(inst.Strike, 'f', -1, 64) + inst.Right.String()
}

func priceArrow(priceDelta float64) string {
	switch {
	case priceDelta > 0:
		return "↑"
	case priceDelta < 0:
		return "↓"
	default:
		return "↔"
	}
}

func trendEmoji(trend models.TrendKind) string {
	switch trend {
	case models.TrendStrongUptrend:
		return "📈"
	case models.TrendStrongDowntrend:
		return "📉"
	default:
		return "⚠️"
	}
}

// renderSizeAlert formats the single-tick OI alert message.
func (s *Scanner) renderSizeAlert(inst models.Instrument, st *models.InstrumentState, f models.Finding) string {
	futurePrice := 0.0
	if fs, ok := s.store.Future(inst.Underlying); ok {
		futurePrice = fs.Price
	}

	lines := []string{
		fmt.Sprintf("%s | OPTION", inst.Underlying),
		fmt.Sprintf("STRIKE: %s %s", strikeLabel(inst), f.Moneyness),
		fmt.Sprintf("ACTION: %s", f.Label),
		fmt.Sprintf("SIZE: %s (%d lots)", f.Bucket, f.Lots),
		fmt.Sprintf("EXISTING OI: %.0f", st.OIPrev),
		fmt.Sprintf("OI Δ: %.0f", f.OIDelta),
		fmt.Sprintf("OI RoC: %.2f%%", f.OIRoc),
		fmt.Sprintf("PRICE: %s", priceArrow(f.PriceDelta)),
		fmt.Sprintf("TIME: %s", f.DetectedAt.In(alertLocation).Format("15:04:05")),
		fmt.Sprintf("%s %s %s", inst.Expiry, inst.Underlying, strikeLabel(inst)),
		fmt.Sprintf("FUTURE PRICE: %.2f", futurePrice),
		fmt.Sprintf("LAST PRICE: %.2f", st.Price),
	}
	return strings.Join(lines, "\n")
}

// renderMomentumAlert formats the trailing-window trend message.
func (s *Scanner) renderMomentumAlert(inst models.Instrument, trend models.TrendKind, stats trendStats) string {
	futureRoc := ratePercent(stats.futureDelta, stats.startFuture)
	optionRoc := ratePercent(stats.optionDelta, stats.startOption)

	minutes := int(stats.duration / time.Minute)
	seconds := int(stats.duration/time.Second) % 60

	lines := []string{
		fmt.Sprintf("- - - %d-Min Momentum Alert - - -", int(s.config.MomentumWindow/time.Minute)),
		fmt.Sprintf("%s | %s", inst.Underlying, strikeLabel(inst)),
		"",
		fmt.Sprintf("%s %s Confirmed", trendEmoji(trend), trend),
		"",
		fmt.Sprintf("OI Δ: %+.0f (%d lots)", stats.oiDelta, stats.lots),
		fmt.Sprintf("OI RoC: %+.2f%%", stats.oiRoc),
		fmt.Sprintf("Future Price Δ: %+.2f (%+.2f%%)", stats.futureDelta, futureRoc),
		fmt.Sprintf("Option Price Δ: %+.2f (%+.2f%%)", stats.optionDelta, optionRoc),
		"",
		fmt.Sprintf("Last Option Price: %.2f", stats.endOption),
		fmt.Sprintf("Last Future Price: %.2f", stats.endFuture),
		fmt.Sprintf("Duration: %dm %ds (%s -> %s)",
			minutes, seconds,
			stats.start.In(alertLocation).Format("15:04"),
			stats.end.In(alertLocation).Format("15:04")),
		"- - - - - - - - - - - - - - - -",
	}
	return strings.Join(lines, "\n")
}
