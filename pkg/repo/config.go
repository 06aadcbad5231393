package repo

import (
	"time"
)

type Duration time.Duration

func (d *Duration) MarshalText() (text []byte, err error) {
	return []byte(time.Duration(*d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	x, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(x)
	return nil
}

func (d *Duration) ToDuration() time.Duration {
	return time.Duration(*d)
}

func (d *Duration) String() string {
	return time.Duration(*d).String()
}

type Config struct {
	Storage Storage `mapstructure:"storage" toml:"storage"`
	Ledger  Ledger  `mapstructure:"ledger" toml:"ledger"`
	Account Account `mapstructure:"account" toml:"account"`
	Log     Log     `mapstructure:"log" toml:"log"`
}

type Storage struct {
	KvType string `mapstructure:"kv_type" toml:"kv_type"`
	Sync   bool   `mapstructure:"sync" toml:"sync"`
	Pebble Pebble `mapstructure:"pebble" toml:"pebble"`
}

type Pebble struct {
	// unit: MB
	CacheSize             int64 `mapstructure:"cache_size" toml:"cache_size"`
	MaxOpenFiles          int   `mapstructure:"max_open_files" toml:"max_open_files"`
	L0CompactionThreshold int   `mapstructure:"l0_compaction_threshold" toml:"l0_compaction_threshold"`
	L0StopWritesThreshold int   `mapstructure:"l0_stop_writes_threshold" toml:"l0_stop_writes_threshold"`
}

type Ledger struct {
	AccountCacheSize int `mapstructure:"account_cache_size" toml:"account_cache_size"`
}

type Account struct {
	// MaxSignatureDepth bounds nested contract-signature validation
	MaxSignatureDepth int `mapstructure:"max_signature_depth" toml:"max_signature_depth"`

	// CallGasLimit is the gas given to a top level call issued from the cli
	CallGasLimit uint64 `mapstructure:"call_gas_limit" toml:"call_gas_limit"`

	// GasPrice is the tx.gasprice seen by the engine
	GasPrice string `mapstructure:"gas_price" toml:"gas_price"`
}

type Log struct {
	Level            string `mapstructure:"level" toml:"level"`
	Filename         string `mapstructure:"filename" toml:"filename"`
	ReportCaller     bool   `mapstructure:"report_caller" toml:"report_caller"`
	EnableColor      bool   `mapstructure:"enable_color" toml:"enable_color"`
	DisableTimestamp bool   `mapstructure:"disable_timestamp" toml:"disable_timestamp"`

	// unit: day
	MaxAge uint `mapstructure:"max_age" toml:"max_age"`

	RotationTime Duration  `mapstructure:"rotation_time" toml:"rotation_time"`
	Module       LogModule `mapstructure:"module" toml:"module"`
}

type LogModule struct {
	Storage        string `mapstructure:"storage" toml:"storage"`
	Ledger         string `mapstructure:"ledger" toml:"ledger"`
	Executor       string `mapstructure:"executor" toml:"executor"`
	SystemContract string `mapstructure:"system_contract" toml:"system_contract"`
	Account        string `mapstructure:"account" toml:"account"`
	CLI            string `mapstructure:"cli" toml:"cli"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage: Storage{
			KvType: KVStorageTypePebble,
			Sync:   true,
			Pebble: Pebble{
				CacheSize:             1,
				MaxOpenFiles:          16384,
				L0CompactionThreshold: 2,
				L0StopWritesThreshold: 1000,
			},
		},
		Ledger: Ledger{
			AccountCacheSize: 1024,
		},
		Account: Account{
			MaxSignatureDepth: 2,
			CallGasLimit:      10_000_000,
			GasPrice:          "1000000000",
		},
		Log: Log{
			Level:            "info",
			Filename:         "scw",
			ReportCaller:     false,
			EnableColor:      true,
			DisableTimestamp: false,
			MaxAge:           30,
			RotationTime:     Duration(24 * time.Hour),
			Module: LogModule{
				Storage:        "info",
				Ledger:         "info",
				Executor:       "info",
				SystemContract: "info",
				Account:        "info",
				CLI:            "info",
			},
		},
	}
}
