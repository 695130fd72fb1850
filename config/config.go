package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Bridge BridgeInfo `toml:"bridge"`
	Api    ApiInfo    `toml:"api"`
	Token  TokenInfo  `toml:"token"`
}

type BridgeInfo struct {
	// AdminAddress is fixed at deployment; every admin-gated call compares
	// against it by value.
	AdminAddress  string `toml:"admin-address"`
	BridgeAddress string `toml:"bridge-address"`
	DataDir       string `toml:"data-dir"`
}

type ApiInfo struct {
	ListenAddr string `toml:"listen-addr"`
}

type TokenInfo struct {
	Url string `toml:"url"`
}

// LoadConfig loads bridge configuration from a toml file.
func LoadConfig(path string) (Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return config, fmt.Errorf("failed to decode TOML configuration: %w", err)
	}
	return config, nil
}
