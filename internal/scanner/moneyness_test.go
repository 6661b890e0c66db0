package scanner

import (
	"testing"

	"oiscanner/internal/models"
)

func TestMoneyness(t *testing.T) {
	tests := []struct {
		name        string
		futurePrice float64 // 0 = never observed
		symbol      string
		want        models.Moneyness
	}{
		{"call below future is ITM", 59100, callSymbol, models.ITM},
		{"call above future is OTM", 58500, callSymbol, models.OTM},
		{"put above future is OTM", 59100, putSymbol, models.OTM},
		{"put below future is ITM", 58500, putSymbol, models.ITM},
		{"within band is ATM", 58910, callSymbol, models.ATM}, // band = 58.91
		{"band edge put is ATM", 58950, putSymbol, models.ATM},
		{"unknown future defaults OTM", 0, callSymbol, models.OTM},
		{"future exempt", 59100, futSymbol, models.MoneynessNA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store, _ := bankniftyScanner(t, DefaultConfig())
			if tt.futurePrice > 0 {
				fs, _ := store.Future("BANKNIFTY")
				fs.Price = tt.futurePrice
			}
			inst, ok := s.reg.Lookup(tt.symbol)
			if !ok {
				t.Fatalf("symbol %s not in registry", tt.symbol)
			}
			if got := s.moneyness(inst); got != tt.want {
				t.Errorf("moneyness(%s, future=%v) = %s, want %s", tt.symbol, tt.futurePrice, got, tt.want)
			}
		})
	}
}
