package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
environment: test
engine:
  pairs: ["BTC/USDT"]
source:
  mode: websocket
  websocket_url: wss://example.test/feed
notify:
  mode: log
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Engine.TickInterval != 15*time.Second {
		t.Errorf("tick_interval = %v", c.Engine.TickInterval)
	}
	if c.Engine.EmissionThreshold != 3 || c.Engine.ActiveThreshold != 7 {
		t.Errorf("thresholds = %v/%v", c.Engine.EmissionThreshold, c.Engine.ActiveThreshold)
	}
	if c.Kafka.SignalsTopic != "tradepulse.signals" {
		t.Errorf("signals_topic = %q", c.Kafka.SignalsTopic)
	}
	if c.Server.Port != 8080 {
		t.Errorf("port = %d", c.Server.Port)
	}
}

func TestLoadRejectsMissingPairs(t *testing.T) {
	cfg := `
environment: test
source:
  mode: websocket
  websocket_url: wss://example.test/feed
notify:
  mode: log
`
	if _, err := Load(writeConfig(t, cfg)); err == nil {
		t.Fatal("expected validation error for empty pairs")
	}
}

func TestLoadRejectsWebsocketModeWithoutURL(t *testing.T) {
	cfg := `
environment: test
engine:
  pairs: ["BTC/USDT"]
source:
  mode: websocket
notify:
  mode: log
`
	if _, err := Load(writeConfig(t, cfg)); err == nil {
		t.Fatal("expected validation error for missing websocket url")
	}
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	full := `
environment: test
engine:
  pairs: ["BTC/USDT"]
  emission_threshold: 8
  active_threshold: 4
source:
  mode: websocket
  websocket_url: wss://example.test/feed
notify:
  mode: log
`
	if _, err := Load(writeConfig(t, full)); err == nil {
		t.Fatal("expected validation error for emission > active")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PAIRS", "ETH/USDT,SOL/USDT")
	t.Setenv("SOURCE_WEBSOCKET_URL", "wss://override.test/feed")

	c, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if len(c.Engine.Pairs) != 2 || c.Engine.Pairs[0] != "ETH/USDT" {
		t.Errorf("pairs = %v", c.Engine.Pairs)
	}
	if c.Source.WebSocketURL != "wss://override.test/feed" {
		t.Errorf("websocket_url = %q", c.Source.WebSocketURL)
	}
}
