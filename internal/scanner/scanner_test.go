package scanner

import (
	"strings"
	"testing"
	"time"

	"oiscanner/internal/models"
	"oiscanner/internal/state"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestScanner(t *testing.T, cfg Config, lotSizes map[string]int, symbols ...string) (*Scanner, *state.Store, *fakeClock) {
	t.Helper()
	reg, err := models.NewRegistry(symbols, lotSizes, 75)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store := state.New(reg, cfg.MomentumWindow)
	s := New(reg, store, cfg)
	clock := &fakeClock{t: time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)}
	s.now = clock.now
	return s, store, clock
}

func fp(v float64) *float64 {
	return &v
}

const (
	callSymbol = "BANKNIFTY24FEB2658900CE"
	putSymbol  = "BANKNIFTY24FEB2658900PE"
	futSymbol  = "BANKNIFTY27JAN26FUT"
)

// bankniftyScanner uses lot size 1 so lot counts equal OI units, which
// keeps the arithmetic in the tests readable.
func bankniftyScanner(t *testing.T, cfg Config) (*Scanner, *state.Store, *fakeClock) {
	t.Helper()
	return newTestScanner(t, cfg, map[string]int{"BANKNIFTY": 1}, callSymbol, putSymbol, futSymbol)
}

func findByKind(findings []models.Finding, kind models.FindingKind) (models.Finding, bool) {
	for _, f := range findings {
		if f.Kind == kind {
			return f, true
		}
	}
	return models.Finding{}, false
}

func TestIngest_DropsUnknownAndIncomplete(t *testing.T) {
	s, _, _ := bankniftyScanner(t, DefaultConfig())

	if got := s.Ingest("RELIANCE24FEB263000CE", fp(100), fp(1000)); got != nil {
		t.Errorf("unknown symbol produced findings: %v", got)
	}
	if got := s.Ingest(callSymbol, nil, fp(1000)); got != nil {
		t.Errorf("missing price produced findings: %v", got)
	}
	if got := s.Ingest(callSymbol, fp(100), nil); got != nil {
		t.Errorf("missing OI produced findings: %v", got)
	}
}

func TestIngest_FirstTickNeverAlerts(t *testing.T) {
	s, _, _ := bankniftyScanner(t, DefaultConfig())
	s.Ingest(futSymbol, fp(59000), nil)

	// Enormous first observation: still no alert, there is no baseline.
	if got := s.Ingest(callSymbol, fp(500), fp(1_000_000)); len(got) != 0 {
		t.Errorf("first tick produced findings: %v", got)
	}
}

func TestIngest_FutureTicksProduceNoFindings(t *testing.T) {
	s, store, _ := bankniftyScanner(t, DefaultConfig())

	if got := s.Ingest(futSymbol, fp(59000), nil); got != nil {
		t.Errorf("future tick produced findings: %v", got)
	}
	fs, _ := store.Future("BANKNIFTY")
	if fs.Price != 59000 {
		t.Errorf("future series not updated: got %v", fs.Price)
	}
}

func TestSizeAlert_ThresholdMonotonicity(t *testing.T) {
	// Same OI delta (same lots), different baselines: only the RoC above
	// the threshold emits.
	tests := []struct {
		name    string
		oiPrev  float64
		oiDelta float64
		want    bool
	}{
		{"roc below threshold", 1_000_000, 15000, false}, // 1.5%
		{"roc above threshold", 500_000, 15000, true},    // 3.0%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			s, _, clock := newTestScanner(t, cfg,
				map[string]int{"BANKNIFTY": 100}, callSymbol, futSymbol)
			s.Ingest(futSymbol, fp(59100), nil) // strike 58900 call is ITM

			s.Ingest(callSymbol, fp(100), fp(tt.oiPrev))
			clock.advance(time.Second)
			findings := s.Ingest(callSymbol, fp(105), fp(tt.oiPrev+tt.oiDelta))

			_, got := findByKind(findings, models.SizeAlert)
			if got != tt.want {
				t.Errorf("emitted=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestSizeAlert_MinLotsGate(t *testing.T) {
	// oiPrev=1000 oi=1300 price 100->105, lot size 50:
	// oiRoc=30%, lots=6, bucket LOW, action BUYER(LONG). The default gate
	// of 100 lots suppresses it; lowering the gate lets it through.
	run := func(t *testing.T, minLots int) []models.Finding {
		cfg := DefaultConfig()
		cfg.MinLotsSizeAlert = minLots
		s, _, clock := newTestScanner(t, cfg,
			map[string]int{"BANKNIFTY": 50}, callSymbol, futSymbol)
		s.Ingest(futSymbol, fp(59100), nil)

		s.Ingest(callSymbol, fp(100), fp(1000))
		clock.advance(time.Second)
		return s.Ingest(callSymbol, fp(105), fp(1300))
	}

	if findings := run(t, 100); len(findings) != 0 {
		t.Errorf("default gate: expected suppression, got %v", findings)
	}

	findings := run(t, 5)
	f, ok := findByKind(findings, models.SizeAlert)
	if !ok {
		t.Fatal("lowered gate: expected a size alert")
	}
	if f.Lots != 6 {
		t.Errorf("got %d lots, want 6", f.Lots)
	}
	if f.Bucket != models.BucketLow {
		t.Errorf("got bucket %s, want LOW", f.Bucket)
	}
	if f.Label != string(models.ActionLongBuildup) {
		t.Errorf("got label %s, want %s", f.Label, models.ActionLongBuildup)
	}
	if f.OIRoc < 29.99 || f.OIRoc > 30.01 {
		t.Errorf("got OI RoC %.2f, want 30", f.OIRoc)
	}
}

func TestSizeAlert_LongUnwinding(t *testing.T) {
	// oiDelta<0 with priceDelta<0 reads as long unwinding.
	s, _, clock := bankniftyScanner(t, DefaultConfig())
	s.Ingest(futSymbol, fp(59100), nil)

	s.Ingest(callSymbol, fp(50), fp(1000))
	clock.advance(time.Second)
	findings := s.Ingest(callSymbol, fp(48), fp(700))

	f, ok := findByKind(findings, models.SizeAlert)
	if !ok {
		t.Fatal("expected a size alert")
	}
	if f.Label != string(models.ActionLongUnwinding) {
		t.Errorf("got label %s, want %s", f.Label, models.ActionLongUnwinding)
	}
	if f.OIDelta != -300 {
		t.Errorf("got OI delta %v, want -300", f.OIDelta)
	}
}

func TestSizeAlert_OTMSuppressed(t *testing.T) {
	// No future price ever observed: moneyness defaults to OTM and the
	// alert is suppressed regardless of size.
	s, _, clock := bankniftyScanner(t, DefaultConfig())

	s.Ingest(callSymbol, fp(100), fp(10000))
	clock.advance(time.Second)
	findings := s.Ingest(callSymbol, fp(105), fp(12000))

	if _, ok := findByKind(findings, models.SizeAlert); ok {
		t.Error("expected OTM suppression with unknown future price")
	}
}

func TestSizeAlert_ZeroOIDeltaIgnored(t *testing.T) {
	s, _, clock := bankniftyScanner(t, DefaultConfig())
	s.Ingest(futSymbol, fp(59100), nil)

	s.Ingest(callSymbol, fp(100), fp(10000))
	clock.advance(time.Second)
	if findings := s.Ingest(callSymbol, fp(120), fp(10000)); len(findings) != 0 {
		t.Errorf("zero OI delta produced findings: %v", findings)
	}
}

func TestSizeAlert_MessageContents(t *testing.T) {
	s, _, clock := bankniftyScanner(t, DefaultConfig())
	s.Ingest(futSymbol, fp(59100), nil)

	s.Ingest(callSymbol, fp(100), fp(10000))
	clock.advance(time.Second)
	findings := s.Ingest(callSymbol, fp(105), fp(10500))

	f, ok := findByKind(findings, models.SizeAlert)
	if !ok {
		t.Fatal("expected a size alert")
	}
	for _, want := range []string{
		"BANKNIFTY | OPTION",
		"STRIKE: 58900CE ITM",
		"ACTION: BUYER(LONG)",
		"SIZE: EXTREME HIGH (500 lots)",
		"EXISTING OI: 10000",
		"OI Δ: 500",
		"OI RoC: 5.00%",
		"PRICE: ↑",
		"FUTURE PRICE: 59100.00",
		"LAST PRICE: 105.00",
	} {
		if !strings.Contains(f.Message, want) {
			t.Errorf("message missing %q:\n%s", want, f.Message)
		}
	}
}
