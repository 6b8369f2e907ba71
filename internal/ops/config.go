package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"main/internal/risk"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Account string        `json:"account"`
	Broker  BrokerConfig  `json:"broker"`
	Risk    risk.Config   `json:"risk"`
	Engine  EngineConfig  `json:"engine"`
	Journal JournalConfig `json:"journal"`
}

// BrokerConfig describes the brokerage session endpoint.
type BrokerConfig struct {
	URL    string `json:"url"`
	AppKey string `json:"appKey"`
}

// EngineConfig captures the coordinator timings and condition name sets.
// Durations are milliseconds.
type EngineConfig struct {
	OrderSpacingMs     int      `json:"orderSpacingMs"`
	SettleDelayMs      int      `json:"settleDelayMs"`
	SnapshotCooldownMs int      `json:"snapshotCooldownMs"`
	QueueCapacity      int      `json:"queueCapacity"`
	BuyConditions      []string `json:"buyConditions"`
	SellConditions     []string `json:"sellConditions"`
}

// JournalConfig describes the optional postgres trade journal.
type JournalConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// EngineSpec is the resolved engine configuration.
type EngineSpec struct {
	OrderSpacing     time.Duration
	SettleDelay      time.Duration
	SnapshotCooldown time.Duration
	QueueCapacity    int
	BuyConditions    []string
	SellConditions   []string
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Account string
	Broker  BrokerConfig
	Risk    risk.Config
	Engine  EngineSpec
	Journal JournalConfig
}

const (
	defaultOrderSpacing     = 3 * time.Second
	defaultSettleDelay      = 5 * time.Second
	defaultSnapshotCooldown = 30 * time.Second
	defaultQueueCapacity    = 1024
)

// Load reads a JSON config file and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve validates a file config and applies defaults.
func Resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Account == "" {
		return Loaded{}, fmt.Errorf("account is empty")
	}
	if cfg.Risk.PerInstrumentCap <= 0 {
		return Loaded{}, fmt.Errorf("risk.perInstrumentCap must be > 0")
	}
	if len(cfg.Engine.BuyConditions) == 0 && len(cfg.Engine.SellConditions) == 0 {
		return Loaded{}, fmt.Errorf("engine has no buy or sell conditions configured")
	}
	if cfg.Journal.Enabled && cfg.Journal.Database == "" {
		return Loaded{}, fmt.Errorf("journal.database is empty")
	}

	engine := EngineSpec{
		OrderSpacing:     defaultOrderSpacing,
		SettleDelay:      defaultSettleDelay,
		SnapshotCooldown: defaultSnapshotCooldown,
		QueueCapacity:    defaultQueueCapacity,
		BuyConditions:    cfg.Engine.BuyConditions,
		SellConditions:   cfg.Engine.SellConditions,
	}
	if cfg.Engine.OrderSpacingMs > 0 {
		engine.OrderSpacing = time.Duration(cfg.Engine.OrderSpacingMs) * time.Millisecond
	}
	if cfg.Engine.SettleDelayMs > 0 {
		engine.SettleDelay = time.Duration(cfg.Engine.SettleDelayMs) * time.Millisecond
	}
	if cfg.Engine.SnapshotCooldownMs > 0 {
		engine.SnapshotCooldown = time.Duration(cfg.Engine.SnapshotCooldownMs) * time.Millisecond
	}
	if cfg.Engine.QueueCapacity > 0 {
		engine.QueueCapacity = cfg.Engine.QueueCapacity
	}

	return Loaded{
		Account: cfg.Account,
		Broker:  cfg.Broker,
		Risk:    cfg.Risk,
		Engine:  engine,
		Journal: cfg.Journal,
	}, nil
}
