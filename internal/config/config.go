// Package config loads chain configuration from a .env file in the
// project root, overridable by environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ChainConfig describes how to reach and drive one chip chain.
type ChainConfig struct {
	SerialPort string
	Baudrate   int
	AsicCnt    int
	DomainCnt  int
	ChipModel  string
}

var (
	chainConfig  *ChainConfig
	configLoaded bool
)

// LoadChainConfig loads chain configuration, caching the result across
// calls within a process.
func LoadChainConfig() (*ChainConfig, error) {
	if chainConfig != nil && configLoaded {
		return chainConfig, nil
	}

	cfg := &ChainConfig{
		Baudrate:  115200,
		AsicCnt:   1,
		DomainCnt: 1,
		ChipModel: "bm1366",
	}

	// Try to load from .env file in project root
	projectRoot := findProjectRoot()
	envPath := filepath.Join(projectRoot, ".env")

	data, err := os.ReadFile(envPath)
	if err == nil {
		parseEnvFile(string(data), cfg)
	}

	// Override with environment variables if set
	if v := os.Getenv("BM13XX_SERIAL_PORT"); v != "" {
		cfg.SerialPort = v
	}
	if v := os.Getenv("BM13XX_BAUDRATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Baudrate = n
		}
	}
	if v := os.Getenv("BM13XX_ASIC_CNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AsicCnt = n
		}
	}
	if v := os.Getenv("BM13XX_DOMAIN_CNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DomainCnt = n
		}
	}
	if v := os.Getenv("BM13XX_CHIP_MODEL"); v != "" {
		cfg.ChipModel = v
	}

	chainConfig = cfg
	configLoaded = true
	return cfg, nil
}

func parseEnvFile(content string, cfg *ChainConfig) {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "BM13XX_SERIAL_PORT":
			cfg.SerialPort = value
		case "BM13XX_BAUDRATE":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.Baudrate = n
			}
		case "BM13XX_ASIC_CNT":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.AsicCnt = n
			}
		case "BM13XX_DOMAIN_CNT":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.DomainCnt = n
			}
		case "BM13XX_CHIP_MODEL":
			cfg.ChipModel = value
		}
	}
}

func findProjectRoot() string {
	cwd, _ := os.Getwd()
	// First check CWD for .env file
	if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
		return cwd
	}
	// Then walk up looking for go.mod
	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return cwd
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return cwd
		}
		cwd = parent
	}
}

// GetSerialPort returns the configured serial port path, or "" if unset.
func GetSerialPort() string {
	cfg, err := LoadChainConfig()
	if err != nil {
		return ""
	}
	return cfg.SerialPort
}

// MustGetChainConfig loads chain configuration, panicking if a serial
// port was never configured.
func MustGetChainConfig() ChainConfig {
	cfg, err := LoadChainConfig()
	if err != nil || cfg.SerialPort == "" {
		panic("BM13XX_SERIAL_PORT must be set via environment or .env file")
	}
	return *cfg
}
