package models

import "time"

// FindingKind identifies which alert path produced a finding.
type FindingKind int

const (
	SizeAlert FindingKind = iota
	MomentumAlert
)

func (k FindingKind) String() string {
	if k == MomentumAlert {
		return "momentum"
	}
	return "size"
}

// Moneyness places an option strike relative to its underlying future.
type Moneyness int

const (
	OTM Moneyness = iota
	ATM
	ITM
	MoneynessNA // futures, where the concept does not apply
)

func (m Moneyness) String() string {
	switch m {
	case ITM:
		return "ITM"
	case ATM:
		return "ATM"
	case MoneynessNA:
		return "N/A"
	default:
		return "OTM"
	}
}

// ActionLabel is the qualitative read of a single-tick price/OI move.
type ActionLabel string

const (
	ActionLongBuildup   ActionLabel = "BUYER(LONG)"
	ActionShortBuildup  ActionLabel = "WRITER(SHORT)"
	ActionShortCovering ActionLabel = "REMOVE FROM SHORT"
	ActionLongUnwinding ActionLabel = "REMOVE FROM LONG"
	ActionHedging       ActionLabel = "HEDGING"
	ActionHedgeRemoval  ActionLabel = "REMOVE FROM HEDGE"
	ActionIndecisive    ActionLabel = "Indecisive Movement"
)

// LotBucket is the qualitative size class of an OI change.
type LotBucket string

const (
	BucketIgnore      LotBucket = "IGNORE"
	BucketLow         LotBucket = "LOW"
	BucketMedium      LotBucket = "MEDIUM"
	BucketHigh        LotBucket = "HIGH"
	BucketExtraHigh   LotBucket = "EXTRA HIGH"
	BucketExtremeHigh LotBucket = "EXTREME HIGH"
)

// TrendKind is a momentum-window verdict.
type TrendKind string

const (
	TrendNone              TrendKind = ""
	TrendStrongUptrend     TrendKind = "STRONG UPTREND"
	TrendWeakUptrend       TrendKind = "WEAK UPTREND (Short Covering)"
	TrendStrongDowntrend   TrendKind = "STRONG DOWNTREND"
	TrendWeakDowntrend     TrendKind = "WEAK DOWNTREND (Long Unwinding)"
)

// Finding is one emitted alert: the computed metrics plus the rendered
// message handed to the notification channel. Findings are produced,
// journaled, dispatched, and discarded.
type Finding struct {
	Kind       FindingKind
	Symbol     string
	Underlying string

	Label     string // ActionLabel or TrendKind
	Bucket    LotBucket
	Moneyness Moneyness

	OIDelta    float64
	OIRoc      float64
	PriceDelta float64
	Lots       int

	Message    string
	DetectedAt time.Time
}
