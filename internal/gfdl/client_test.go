package gfdl

import "testing"

func TestDecodeTick(t *testing.T) {
	payload := []byte(`{"MessageType":"RealtimeResult","InstrumentIdentifier":"BANKNIFTY24FEB2658900CE","LastTradePrice":105.5,"OpenInterest":150000}`)

	result, ok, err := decodeTick(payload)
	if err != nil {
		t.Fatalf("decodeTick: %v", err)
	}
	if !ok {
		t.Fatal("expected a realtime tick")
	}
	if result.InstrumentIdentifier != "BANKNIFTY24FEB2658900CE" {
		t.Errorf("got symbol %s", result.InstrumentIdentifier)
	}
	if result.LastTradePrice == nil || *result.LastTradePrice != 105.5 {
		t.Errorf("got price %v", result.LastTradePrice)
	}
	if result.OpenInterest == nil || *result.OpenInterest != 150000 {
		t.Errorf("got OI %v", result.OpenInterest)
	}
}

func TestDecodeTick_OmittedFields(t *testing.T) {
	payload := []byte(`{"MessageType":"RealtimeResult","InstrumentIdentifier":"BANKNIFTY27JAN26FUT","LastTradePrice":59000}`)

	result, ok, err := decodeTick(payload)
	if err != nil {
		t.Fatalf("decodeTick: %v", err)
	}
	if !ok {
		t.Fatal("expected a realtime tick")
	}
	if result.OpenInterest != nil {
		t.Errorf("expected nil OI, got %v", *result.OpenInterest)
	}
}

func TestDecodeTick_OtherMessageTypes(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{"Complete":true,"MessageType":"AuthenticateResult"}`),
		[]byte(`{"MessageType":"SubscribeRealtimeResult","Complete":true}`),
		[]byte(`{}`),
	}
	for _, payload := range payloads {
		if _, ok, err := decodeTick(payload); err != nil {
			t.Errorf("decodeTick(%s): %v", payload, err)
		} else if ok {
			t.Errorf("decodeTick(%s): expected ok=false", payload)
		}
	}
}

func TestDecodeTick_Malformed(t *testing.T) {
	if _, _, err := decodeTick([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}
