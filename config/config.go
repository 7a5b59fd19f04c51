package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	RPCURL            string
	PrivateKey        string
	FraudAPIURL       string
	FraudCheckTimeout time.Duration
	ExplorerAPIURL    string
	ExplorerAPIKey    string
	LocalTokenAddress string
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".walletguard")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("fraud_api_url", "http://localhost:5000")
	viper.SetDefault("fraud_check_timeout", "15s")
	viper.SetDefault("explorer_api_url", "https://api.etherscan.io/v2/api")

	// Read from environment variables
	viper.SetEnvPrefix("WALLETGUARD")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		RPCURL:            viper.GetString("rpc_url"),
		PrivateKey:        viper.GetString("private_key"),
		FraudAPIURL:       viper.GetString("fraud_api_url"),
		FraudCheckTimeout: viper.GetDuration("fraud_check_timeout"),
		ExplorerAPIURL:    viper.GetString("explorer_api_url"),
		ExplorerAPIKey:    viper.GetString("explorer_api_key"),
		LocalTokenAddress: viper.GetString("local_token_address"),
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL not found. Please set WALLETGUARD_RPC_URL or create a .walletguard.yaml config file")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not found. Please set WALLETGUARD_PRIVATE_KEY or create a .walletguard.yaml config file")
	}

	return cfg, nil
}
