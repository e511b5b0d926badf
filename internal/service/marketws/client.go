package marketws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"TradePulse/internal/domain/models"
)

// Client streams ticker updates from an exchange WebSocket feed into a
// LatestStore. Reconnection is handled by the Run loop.
type Client struct {
	url            string
	pairs          []string
	store          *LatestStore
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn *websocket.Conn
}

// NewClient creates a stream client for the given feed URL and pairs.
func NewClient(url string, pairs []string, store *LatestStore, reconnectDelay, pingInterval time.Duration) *Client {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Client{
		url:            url,
		pairs:          pairs,
		store:          store,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

type tickerFrame struct {
	Type   string  `json:"type"`
	Pair   string  `json:"pair"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Time   int64   `json:"time"` // ms
}

// Run connects, subscribes and pumps frames into the store until ctx is
// cancelled, reconnecting on stream errors.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := c.connectAndStream(ctx); err != nil {
			log.Printf("marketws: stream ended: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Client) connectAndStream(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("marketws connect: %w", err)
	}
	c.conn = conn
	defer conn.Close()
	log.Printf("marketws: connected to %s", c.url)

	if err := c.subscribe(); err != nil {
		return err
	}

	pingDone := make(chan struct{})
	defer close(pingDone)
	go c.pingLoop(ctx, pingDone)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("marketws read: %w", err)
		}
		var frame tickerFrame
		if err := json.Unmarshal(b, &frame); err != nil {
			// ignore non-ticker frames
			continue
		}
		if frame.Type != "ticker" || frame.Price <= 0 {
			continue
		}
		c.store.Put(models.MarketSample{
			Pair:      frame.Pair,
			Price:     frame.Price,
			Volume:    frame.Volume,
			High:      frame.High,
			Low:       frame.Low,
			Timestamp: time.UnixMilli(frame.Time).UTC(),
		})
	}
}

func (c *Client) subscribe() error {
	for _, pair := range c.pairs {
		msg := map[string]string{"type": "subscribe", "pair": pair}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", pair, err)
		}
		log.Printf("marketws: subscribed %s", pair)
	}
	return nil
}

func (c *Client) pingLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			_ = c.conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}
