package scanner

import (
	"math"

	"oiscanner/internal/models"
)

// lotsFromOIDelta converts an absolute OI change into whole lots.
func lotsFromOIDelta(oiDelta float64, lotSize int) int {
	if lotSize == 0 {
		return 0
	}
	return int(math.Abs(oiDelta) / float64(lotSize))
}

// bucketForLots maps a lot count to its qualitative size class.
func bucketForLots(lots int) models.LotBucket {
	switch {
	case lots >= 200:
		return models.BucketExtremeHigh
	case lots >= 150:
		return models.BucketExtraHigh
	case lots >= 100:
		return models.BucketHigh
	case lots >= 75:
		return models.BucketMedium
	case lots >= 1:
		return models.BucketLow
	default:
		return models.BucketIgnore
	}
}

// classifyAction labels the sign combination of the OI and price deltas.
// Rising OI means fresh positioning (long or short depending on price),
// falling OI means an exit; OI movement without a price change reads as
// hedging activity.
func classifyAction(oiDelta, priceDelta float64) models.ActionLabel {
	switch {
	case priceDelta == 0 && oiDelta > 0:
		return models.ActionHedging
	case priceDelta == 0 && oiDelta < 0:
		return models.ActionHedgeRemoval
	case oiDelta > 0 && priceDelta > 0:
		return models.ActionLongBuildup
	case oiDelta > 0 && priceDelta < 0:
		return models.ActionShortBuildup
	case oiDelta < 0 && priceDelta > 0:
		return models.ActionShortCovering
	case oiDelta < 0 && priceDelta < 0:
		return models.ActionLongUnwinding
	default:
		return models.ActionIndecisive
	}
}
