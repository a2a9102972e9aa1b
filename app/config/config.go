package config

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	AppConfigFileName = "app"

	// DefaultProgramID is the deployed canvas program.
	DefaultProgramID = "5rV2CJ8bYV4qEt8qcmhZ1Ty3o6eM7K1LAJDDFipPNyx2"
	DefaultEndpoint  = "https://api.devnet.solana.com"

	// positions are written as a single byte per axis
	MaxCanvasWidth = 256
)

var appConfigTemplate *template.Template

const appConfigTpl = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

[server]
# Address the action server listens on
laddr = "{{ .ServerConfig.ListenAddr }}"
# Maximum number of simultaneously open connections
maxOpenConnections = {{ .ServerConfig.MaxOpenConnections }}
# Largest accepted POST body in bytes
maxPostSize = {{ .ServerConfig.MaxPostSize }}
# Base URL used in action links, empty means relative links
baseURL = "{{ .ServerConfig.BaseURL }}"
# Icon shown by action clients
icon = "{{ .ServerConfig.Icon }}"

[ledger]
# JSON-RPC endpoint of the cluster
endpoint = "{{ .LedgerConfig.Endpoint }}"
# Cluster name: mainnet, devnet or testnet
cluster = "{{ .LedgerConfig.Cluster }}"
# Commitment used for account and blockhash queries
commitment = "{{ .LedgerConfig.Commitment }}"
# Timeout of a single RPC call
timeout = "{{ .LedgerConfig.Timeout }}"
# Maximum RPC calls per second, 0 disables pacing
rateLimit = {{ .LedgerConfig.RateLimit }}
# Consecutive failures before the breaker opens
breakerErrors = {{ .LedgerConfig.BreakerErrors }}
# How long the breaker stays open
breakerTimeout = "{{ .LedgerConfig.BreakerTimeout }}"

[canvas]
# Width and height of the canvas, at most 256
width = {{ .CanvasConfig.Width }}
programId = "{{ .CanvasConfig.ProgramID }}"
# Number of derived pixel addresses kept in memory
addressCacheSize = {{ .CanvasConfig.AddressCacheSize }}

[log]
logToConsole = {{ .LogConfig.LogToConsole }}
logLevel = "{{ .LogConfig.LogLevel }}"
logFilePath = "{{ .LogConfig.LogFilePath }}"
logMaxSize = {{ .LogConfig.LogMaxSize }}
logMaxAge = {{ .LogConfig.LogMaxAge }}

[publication]
# Publish every issued action to kafka
publishKafka = {{ .PublicationConfig.PublishKafka }}
actionTopic = "{{ .PublicationConfig.ActionTopic }}"
# Brokers separated by ";"
actionKafka = "{{ .PublicationConfig.ActionKafka }}"
kafkaVersion = "{{ .PublicationConfig.KafkaVersion }}"

# Write every issued action as a json line under the home dir
publishLocal = {{ .PublicationConfig.PublishLocal }}
localMaxSize = {{ .PublicationConfig.LocalMaxSize }}
localMaxAge = {{ .PublicationConfig.LocalMaxAge }}

# Size of the queue between request handlers and the publisher
publicationChannelSize = {{ .PublicationConfig.PublicationChannelSize }}
`

func init() {
	var err error
	tmpl := template.New("appConfigFileTemplate")
	if appConfigTemplate, err = tmpl.Parse(appConfigTpl); err != nil {
		panic(err)
	}
}

type PixeldContext struct {
	*PixeldConfig
	HomeDir string
	Logger  log.Logger
}

func NewDefaultContext() *PixeldContext {
	return &PixeldContext{
		PixeldConfig: DefaultPixeldConfig(),
		Logger:       log.NewTMLogger(log.NewSyncWriter(os.Stdout)),
	}
}

// ParseAppConfigInPlace reads the viper state into the context's config.
func (context *PixeldContext) ParseAppConfigInPlace() error {
	if err := viper.Unmarshal(context.PixeldConfig); err != nil {
		return errors.Wrap(err, "failed to parse app config")
	}
	return context.PixeldConfig.Validate()
}

type PixeldConfig struct {
	*ServerConfig      `mapstructure:"server"`
	*LedgerConfig      `mapstructure:"ledger"`
	*CanvasConfig      `mapstructure:"canvas"`
	*LogConfig         `mapstructure:"log"`
	*PublicationConfig `mapstructure:"publication"`
}

func DefaultPixeldConfig() *PixeldConfig {
	return &PixeldConfig{
		ServerConfig:      defaultServerConfig(),
		LedgerConfig:      defaultLedgerConfig(),
		CanvasConfig:      defaultCanvasConfig(),
		LogConfig:         defaultLogConfig(),
		PublicationConfig: defaultPublicationConfig(),
	}
}

func (c *PixeldConfig) Validate() error {
	if c.CanvasConfig.Width <= 0 || c.CanvasConfig.Width > MaxCanvasWidth {
		return errors.Errorf("canvas width must be within [1, %d], got %d", MaxCanvasWidth, c.CanvasConfig.Width)
	}
	if c.CanvasConfig.AddressCacheSize <= 0 {
		return errors.Errorf("address cache size must be positive, got %d", c.CanvasConfig.AddressCacheSize)
	}
	if _, ok := ClusterGenesis[c.LedgerConfig.Cluster]; !ok {
		return errors.Errorf("unknown cluster %q", c.LedgerConfig.Cluster)
	}
	if c.LedgerConfig.Timeout <= 0 {
		return errors.New("ledger timeout must be positive")
	}
	if c.LedgerConfig.BreakerErrors <= 0 || c.LedgerConfig.BreakerTimeout <= 0 {
		return errors.New("ledger breaker needs a positive error threshold and timeout")
	}
	if c.ServerConfig.MaxPostSize <= 0 {
		return errors.New("max post size must be positive")
	}
	if c.PublicationConfig.PublishKafka && c.PublicationConfig.ActionKafka == "" {
		return errors.New("kafka publication enabled without brokers")
	}
	if c.PublicationConfig.ShouldPublishAny() && c.PublicationConfig.PublicationChannelSize < 1 {
		return errors.Errorf("publication channel size must be positive, got %d", c.PublicationConfig.PublicationChannelSize)
	}
	return nil
}

type ServerConfig struct {
	ListenAddr         string `mapstructure:"laddr"`
	MaxOpenConnections int    `mapstructure:"maxOpenConnections"`
	MaxPostSize        int64  `mapstructure:"maxPostSize"`
	BaseURL            string `mapstructure:"baseURL"`
	Icon               string `mapstructure:"icon"`
}

func defaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr:         "localhost:8080",
		MaxOpenConnections: 1000,
		MaxPostSize:        1024 * 16,
		Icon:               "https://picassol.app/icon.png",
	}
}

// ClusterGenesis maps a cluster name to the genesis hash advertised in
// action headers.
var ClusterGenesis = map[string]string{
	"mainnet": "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp",
	"devnet":  "EtWTRABZaYq6iMfeYKouRu166VU2xqa1",
	"testnet": "4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z",
}

type LedgerConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Cluster        string        `mapstructure:"cluster"`
	Commitment     string        `mapstructure:"commitment"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      int           `mapstructure:"rateLimit"`
	BreakerErrors  int           `mapstructure:"breakerErrors"`
	BreakerTimeout time.Duration `mapstructure:"breakerTimeout"`
}

// BlockchainID is the CAIP-2 style id of the configured cluster.
func (c *LedgerConfig) BlockchainID() string {
	return "solana:" + ClusterGenesis[c.Cluster]
}

func defaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		Endpoint:       DefaultEndpoint,
		Cluster:        "devnet",
		Commitment:     "processed",
		Timeout:        10 * time.Second,
		RateLimit:      20,
		BreakerErrors:  5,
		BreakerTimeout: 10 * time.Second,
	}
}

type CanvasConfig struct {
	Width            int    `mapstructure:"width"`
	ProgramID        string `mapstructure:"programId"`
	AddressCacheSize int    `mapstructure:"addressCacheSize"`
}

func defaultCanvasConfig() *CanvasConfig {
	return &CanvasConfig{
		Width:            200,
		ProgramID:        DefaultProgramID,
		AddressCacheSize: 200 * 200,
	}
}

type LogConfig struct {
	LogToConsole bool   `mapstructure:"logToConsole"`
	LogLevel     string `mapstructure:"logLevel"`
	LogFilePath  string `mapstructure:"logFilePath"`
	LogMaxSize   int    `mapstructure:"logMaxSize"`
	LogMaxAge    int    `mapstructure:"logMaxAge"`
}

func defaultLogConfig() *LogConfig {
	return &LogConfig{
		LogToConsole: true,
		LogLevel:     "info",
		LogFilePath:  "pixeld.log",
		LogMaxSize:   100,
		LogMaxAge:    7,
	}
}

type PublicationConfig struct {
	PublishKafka bool   `mapstructure:"publishKafka"`
	ActionTopic  string `mapstructure:"actionTopic"`
	ActionKafka  string `mapstructure:"actionKafka"`
	KafkaVersion string `mapstructure:"kafkaVersion"`

	PublishLocal bool `mapstructure:"publishLocal"`
	LocalMaxSize int  `mapstructure:"localMaxSize"`
	LocalMaxAge  int  `mapstructure:"localMaxAge"`

	PublicationChannelSize int `mapstructure:"publicationChannelSize"`
}

func defaultPublicationConfig() *PublicationConfig {
	return &PublicationConfig{
		PublishKafka: false,
		ActionTopic:  "pixel-actions",
		ActionKafka:  "127.0.0.1:9092",
		KafkaVersion: "2.1.0",

		PublishLocal: false,
		LocalMaxSize: 1024,
		LocalMaxAge:  7,

		PublicationChannelSize: 10000,
	}
}

func (pubCfg PublicationConfig) ShouldPublishAny() bool {
	return pubCfg.PublishKafka || pubCfg.PublishLocal
}

// WriteConfigFile renders config as TOML at configFilePath.
func WriteConfigFile(configFilePath string, config *PixeldConfig) error {
	var buffer bytes.Buffer
	if err := appConfigTemplate.Execute(&buffer, config); err != nil {
		return errors.Wrap(err, "failed to render app config")
	}
	if err := os.MkdirAll(filepath.Dir(configFilePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(configFilePath, buffer.Bytes(), 0644)
}
