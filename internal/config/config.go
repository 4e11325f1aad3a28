package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/tonpay/solvere/pkg/validation"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Blockchain configuration
	WalletAddress    string
	Network          string
	TonAPIKey        string
	USDTJettonMaster string

	// Notification configuration
	TelegramBotToken string
	TelegramChatID   string
}

// ToncenterEndpoint returns the JSON-RPC endpoint for the configured network.
func (c *Config) ToncenterEndpoint() string {
	if c.Network == NetworkMainnet {
		return "https://toncenter.com/api/v2"
	}
	return "https://testnet.toncenter.com/api/v2"
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		APIPort:          getEnvAsInt("API_PORT", 6533),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "solvere"),
		WalletAddress:    getEnv("TON_WALLET_ADDRESS", ""),
		Network:          getEnv("TON_NETWORK", NetworkTestnet),
		TonAPIKey:        getEnv("TON_API_KEY", ""),
		USDTJettonMaster: getEnv("USDT_JETTON_MASTER", ""),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.WalletAddress == "" {
		return fmt.Errorf("TON_WALLET_ADDRESS is required")
	}

	normalized, err := validation.ValidateAndNormalizeAddress(c.WalletAddress)
	if err != nil {
		return fmt.Errorf("invalid TON_WALLET_ADDRESS format: %w", err)
	}
	c.WalletAddress = normalized

	if c.Network != NetworkMainnet && c.Network != NetworkTestnet {
		return fmt.Errorf("TON_NETWORK must be %q or %q, got %q", NetworkMainnet, NetworkTestnet, c.Network)
	}

	if c.USDTJettonMaster != "" {
		if _, err := validation.ValidateAndNormalizeAddress(c.USDTJettonMaster); err != nil {
			return fmt.Errorf("invalid USDT_JETTON_MASTER format: %w", err)
		}
	}

	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
