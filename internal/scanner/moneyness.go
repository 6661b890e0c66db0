package scanner

import (
	"math"

	"oiscanner/internal/models"
)

// moneyness places an option strike against the latest known price of its
// underlying future. A never-observed future price classifies as OTM: we do
// not alert on strikes we cannot place.
func (s *Scanner) moneyness(inst models.Instrument) models.Moneyness {
	if inst.Kind == models.KindFuture {
		return models.MoneynessNA
	}

	fs, ok := s.store.Future(inst.Underlying)
	if !ok || fs.Price <= 0 {
		return models.OTM
	}

	band := fs.Price * s.config.ATMBandRatio
	if math.Abs(fs.Price-inst.Strike) <= band {
		return models.ATM
	}

	if (inst.Right == models.RightCall && inst.Strike < fs.Price) ||
		(inst.Right == models.RightPut && inst.Strike > fs.Price) {
		return models.ITM
	}
	return models.OTM
}
