// Package gfdl implements the websocket market-data transport: connect,
// authenticate, subscribe the instrument universe, and stream tick records
// to a handler, reconnecting with backoff on any transport fault.
package gfdl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"oiscanner/internal/logger"
)

// TickHandler receives one decoded tick record. Price and OI are nil when
// the feed omitted the field.
type TickHandler func(symbol string, price, oi *float64)

// Config holds the transport settings.
type Config struct {
	WSSURL           string
	APIKey           string
	Exchange         string
	Symbols          []string
	HandshakeTimeout time.Duration
	AuthRetryBackoff time.Duration
	ReconnectBackoff time.Duration
}

// Client owns one streaming session at a time.
type Client struct {
	config  Config
	handler TickHandler
	dialer  *websocket.Dialer
}

// NewClient creates a transport client that delivers ticks to handler.
func NewClient(config Config, handler TickHandler) *Client {
	return &Client{
		config:  config,
		handler: handler,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

type authRequest struct {
	MessageType string `json:"MessageType"`
	Password    string `json:"Password"`
}

type authResponse struct {
	Complete bool   `json:"Complete"`
	Comment  string `json:"Comment"`
}

type subscribeRequest struct {
	MessageType          string `json:"MessageType"`
	Exchange             string `json:"Exchange"`
	Unsubscribe          string `json:"Unsubscribe"`
	InstrumentIdentifier string `json:"InstrumentIdentifier"`
}

type realtimeResult struct {
	MessageType          string   `json:"MessageType"`
	InstrumentIdentifier string   `json:"InstrumentIdentifier"`
	LastTradePrice       *float64 `json:"LastTradePrice"`
	OpenInterest         *float64 `json:"OpenInterest"`
}

// Run drives the session state machine until ctx is cancelled: Connecting →
// Authenticating → Subscribed → Streaming, then back to Connecting after a
// backoff whenever the session drops. Authentication rejections use the
// longer auth backoff; plain disconnects use the reconnect backoff.
func (c *Client) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		backoff := c.config.ReconnectBackoff
		if err := c.runSession(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			if authErr, ok := err.(*authError); ok {
				logger.Error("Authentication failed: %s. Retrying in %v", authErr.comment, c.config.AuthRetryBackoff)
				backoff = c.config.AuthRetryBackoff
			} else {
				logger.Warn("Session ended: %v. Reconnecting in %v", err, backoff)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

type authError struct {
	comment string
}

func (e *authError) Error() string {
	return fmt.Sprintf("authentication rejected: %s", e.comment)
}

// runSession runs a single connect/auth/subscribe/stream cycle.
func (c *Client) runSession(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.config.WSSURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Unblock reads when the context is cancelled mid-stream.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	logger.Info("Connected to %s, authenticating", c.config.WSSURL)
	if err := c.authenticate(conn); err != nil {
		return err
	}

	logger.Info("Authentication successful, subscribing %d symbols", len(c.config.Symbols))
	if err := c.subscribeAll(conn); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	logger.Info("Subscriptions sent, scanner is live")

	return c.stream(ctx, conn)
}

func (c *Client) authenticate(conn *websocket.Conn) error {
	req := authRequest{MessageType: "Authenticate", Password: c.config.APIKey}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.config.HandshakeTimeout))
	var resp authResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("read auth response: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	if !resp.Complete {
		return &authError{comment: resp.Comment}
	}
	return nil
}

// subscribeAll sends one subscription per symbol. Acknowledgments are not
// waited for; the session is streaming as soon as the requests are written.
func (c *Client) subscribeAll(conn *websocket.Conn) error {
	for _, symbol := range c.config.Symbols {
		req := subscribeRequest{
			MessageType:          "SubscribeRealtime",
			Exchange:             c.config.Exchange,
			Unsubscribe:          "false",
			InstrumentIdentifier: symbol,
		}
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("subscribe %s: %w", symbol, err)
		}
	}
	return nil
}

// stream reads frames until the transport closes or errors. Malformed
// frames are logged and skipped without leaving the streaming state.
func (c *Client) stream(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		result, ok, err := decodeTick(payload)
		if err != nil {
			logger.Warn("Skipping malformed message: %v", err)
			continue
		}
		if !ok {
			continue
		}
		c.handler(result.InstrumentIdentifier, result.LastTradePrice, result.OpenInterest)
	}
}

// decodeTick parses a frame and reports whether it is a realtime tick.
func decodeTick(payload []byte) (realtimeResult, bool, error) {
	var result realtimeResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return realtimeResult{}, false, err
	}
	if result.MessageType != "RealtimeResult" {
		return realtimeResult{}, false, nil
	}
	return result, true, nil
}
