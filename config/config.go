package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	ENS      ENSConfig      `mapstructure:"ens"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Payroll  PayrollConfig  `mapstructure:"payroll"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig configures operator authentication. The operator password is
// stored as an Argon2id hash; the service never sees a plaintext at rest.
type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	JWTExpiry            time.Duration `mapstructure:"jwt_expiry"`
	Issuer               string        `mapstructure:"issuer"`
	OperatorUsername     string        `mapstructure:"operator_username"`
	OperatorPasswordHash string        `mapstructure:"operator_password_hash"`
}

// ENSConfig configures naming registry reads. Preference lookups run against
// the registry chain (Sepolia in the original deployment), independent of the
// settlement chain.
type ENSConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	RegistryAddress string `mapstructure:"registry_address"`
	ChainKey        string `mapstructure:"chain_key"` // text record key for chain preference
	TokenKey        string `mapstructure:"token_key"` // text record key for token preference
}

// ChainConfig configures the home (settlement) chain and the batch
// distributor contract.
type ChainConfig struct {
	HomeChainID        int64         `mapstructure:"home_chain_id"`
	RPCURL             string        `mapstructure:"rpc_url"`
	DistributorAddress string        `mapstructure:"distributor_address"`
	SignerKey          string        `mapstructure:"signer_key"` // hex private key of the treasury signer
	TokenDecimals      int32         `mapstructure:"token_decimals"`
	ConfirmTimeout     time.Duration `mapstructure:"confirm_timeout"`
	PollInterval       time.Duration `mapstructure:"poll_interval"`
}

// BridgeChainConfig describes one CCTP-enabled destination chain.
type BridgeChainConfig struct {
	ChainID            int64  `mapstructure:"chain_id"`
	RPCURL             string `mapstructure:"rpc_url"`
	USDCAddress        string `mapstructure:"usdc_address"`
	TokenMessenger     string `mapstructure:"token_messenger"`
	MessageTransmitter string `mapstructure:"message_transmitter"`
	Domain             uint32 `mapstructure:"domain"` // CCTP domain identifier
}

// BridgeConfig configures the cross-chain transfer path.
type BridgeConfig struct {
	AttestationURL     string                       `mapstructure:"attestation_url"`
	AttestationTimeout time.Duration                `mapstructure:"attestation_timeout"`
	PollInterval       time.Duration                `mapstructure:"poll_interval"`
	Source             BridgeChainConfig            `mapstructure:"source"`
	Destinations       map[string]BridgeChainConfig `mapstructure:"destinations"`
}

// PayrollConfig holds run-level settings.
type PayrollConfig struct {
	DefaultToken string        `mapstructure:"default_token"`
	RunLockTTL   time.Duration `mapstructure:"run_lock_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PRL (PayRolled).
// Nested keys use underscore: PRL_DATABASE_HOST, PRL_CHAIN_RPC_URL, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "payrolled")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiry", "24h")
	v.SetDefault("auth.issuer", "payrolled")
	v.SetDefault("auth.operator_username", "")
	v.SetDefault("auth.operator_password_hash", "")
	v.SetDefault("ens.rpc_url", "")
	v.SetDefault("ens.registry_address", "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")
	v.SetDefault("ens.chain_key", "payroll.chain")
	v.SetDefault("ens.token_key", "payroll.token")
	v.SetDefault("chain.home_chain_id", 5042002)
	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("chain.distributor_address", "")
	v.SetDefault("chain.signer_key", "")
	v.SetDefault("chain.token_decimals", 6)
	v.SetDefault("chain.confirm_timeout", "3m")
	v.SetDefault("chain.poll_interval", "3s")
	v.SetDefault("bridge.attestation_url", "https://iris-api-sandbox.circle.com")
	v.SetDefault("bridge.attestation_timeout", "5m")
	v.SetDefault("bridge.poll_interval", "5s")
	v.SetDefault("payroll.default_token", "USDC")
	v.SetDefault("payroll.run_lock_ttl", "30m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PRL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("PRL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
