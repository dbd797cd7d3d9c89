package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Timeouts shared by every WebSocket connection.
const (
	// Time allowed to write a message to the peer.
	WriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	PongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod = (PongWait * 9) / 10

	// Maximum message size allowed from peer.
	MaxMessageSize = 4096
)

// Config carries the tunable game limits.
type Config struct {
	// MaxRoomMembers caps how many connections one room may hold.
	MaxRoomMembers int

	// SendBufferSize is the length of each connection's outbound queue.
	// A connection whose queue overflows is disconnected.
	SendBufferSize int

	// MessagesPerSecond and MessageBurst bound the inbound rate per
	// connection.
	MessagesPerSecond float64
	MessageBurst      int
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		MaxRoomMembers:    10,
		SendBufferSize:    256,
		MessagesPerSecond: 10,
		MessageBurst:      20,
	}
}

// Load builds a Config from defaults plus RPS_* environment overrides.
func Load() *Config {
	cfg := Default()

	if v, ok := envInt("RPS_MAX_ROOM_MEMBERS"); ok {
		cfg.MaxRoomMembers = v
	}
	if v, ok := envInt("RPS_SEND_BUFFER_SIZE"); ok {
		cfg.SendBufferSize = v
	}
	if v, ok := envFloat("RPS_MESSAGES_PER_SECOND"); ok {
		cfg.MessagesPerSecond = v
	}
	if v, ok := envInt("RPS_MESSAGE_BURST"); ok {
		cfg.MessageBurst = v
	}

	return cfg
}

// Validate checks ranges. A room needs space for at least two players or no
// game can ever start.
func (c *Config) Validate() error {
	if c.MaxRoomMembers < 2 {
		return fmt.Errorf("%w: max room members must be >= 2, got %d", ErrInvalidConfig, c.MaxRoomMembers)
	}
	if c.SendBufferSize < 1 {
		return fmt.Errorf("%w: send buffer size must be >= 1, got %d", ErrInvalidConfig, c.SendBufferSize)
	}
	if c.MessagesPerSecond <= 0 {
		return fmt.Errorf("%w: messages per second must be > 0, got %v", ErrInvalidConfig, c.MessagesPerSecond)
	}
	if c.MessageBurst < 1 {
		return fmt.Errorf("%w: message burst must be >= 1, got %d", ErrInvalidConfig, c.MessageBurst)
	}
	return nil
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
