// Package harvestconfig loads ambient configuration (tax rates, wash-sale
// windows, selector tuning, audit store, logging) from a YAML file with
// environment-variable overrides, mirroring the ecosystem's godotenv+yaml
// loader pattern.
package harvestconfig

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Tax      TaxConfig      `yaml:"tax"`
	WashSale WashSaleConfig `yaml:"wash_sale"`
	Selector SelectorConfig `yaml:"selector"`
	Audit    AuditConfig    `yaml:"audit"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TaxConfig mirrors lotmodel.TaxConfig in a YAML-friendly shape (rates as
// float64 rather than decimal.Decimal, converted by the caller).
type TaxConfig struct {
	ShortTermRate           float64 `yaml:"short_term_rate"`
	LongTermRate            float64 `yaml:"long_term_rate"`
	OrdinaryIncomeRate      float64 `yaml:"ordinary_income_rate"`
	NetInvestmentIncomeRate float64 `yaml:"net_investment_income_rate"`
	StateRate               float64 `yaml:"state_rate"`
	Jurisdiction            string  `yaml:"jurisdiction"`
}

// WashSaleConfig mirrors lotmodel.WashSaleConfig.
type WashSaleConfig struct {
	BeforeDays   int    `yaml:"before_days"`
	AfterDays    int    `yaml:"after_days"`
	Jurisdiction string `yaml:"jurisdiction"`
	StrictMode   bool   `yaml:"strict_mode"`
}

// SelectorConfig exposes the selector tuning knobs a deployment may want to
// override without a code change.
type SelectorConfig struct {
	MaxOvershootPercent float64 `yaml:"max_overshoot_percent"`
	OptimizationLevel   string  `yaml:"optimization_level"`
	MaxLots             int     `yaml:"max_lots"`
}

// AuditConfig configures the optional calculation-history store.
type AuditConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres
	DSN    string `yaml:"dsn"`
}

// LoggingConfig mirrors the ecosystem's logging config shape.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputPath string `yaml:"output_path"`
}

// Load reads configuration from environment variables only.
func Load() (*Config, error) {
	return LoadWithYAML("")
}

// LoadWithYAML reads configuration from a YAML file and environment
// variables. Environment variables take precedence over YAML file values.
func LoadWithYAML(yamlPath string) (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Tax: TaxConfig{
			ShortTermRate:           0.37,
			LongTermRate:            0.20,
			OrdinaryIncomeRate:      0.37,
			NetInvestmentIncomeRate: 0.038,
			Jurisdiction:            "US-FEDERAL",
		},
		WashSale: WashSaleConfig{
			BeforeDays:   30,
			AfterDays:    30,
			Jurisdiction: "US-FEDERAL",
			StrictMode:   true,
		},
		Selector: SelectorConfig{
			MaxOvershootPercent: 5,
			OptimizationLevel:   "balanced",
			MaxLots:             50,
		},
		Audit: AuditConfig{
			Driver: "sqlite",
			DSN:    "harvestengine.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if yamlPath != "" {
		if err := loadFromYAML(yamlPath, config); err != nil {
			return nil, fmt.Errorf("failed to load YAML config: %w", err)
		}
	}

	applyEnvironmentOverrides(config)

	return config, nil
}

func loadFromYAML(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func applyEnvironmentOverrides(config *Config) {
	if val := getEnvAsFloat("TAX_SHORT_TERM_RATE", 0); val != 0 {
		config.Tax.ShortTermRate = val
	}
	if val := getEnvAsFloat("TAX_LONG_TERM_RATE", 0); val != 0 {
		config.Tax.LongTermRate = val
	}
	if val := getEnvAsFloat("TAX_STATE_RATE", 0); val != 0 {
		config.Tax.StateRate = val
	}
	if val := getEnv("TAX_JURISDICTION", ""); val != "" {
		config.Tax.Jurisdiction = val
	}

	if val := getEnvAsInt("WASH_SALE_BEFORE_DAYS", 0); val != 0 {
		config.WashSale.BeforeDays = val
	}
	if val := getEnvAsInt("WASH_SALE_AFTER_DAYS", 0); val != 0 {
		config.WashSale.AfterDays = val
	}
	if val, ok := getEnvAsBoolOK("WASH_SALE_STRICT_MODE"); ok {
		config.WashSale.StrictMode = val
	}

	if val := getEnvAsFloat("SELECTOR_MAX_OVERSHOOT_PERCENT", 0); val != 0 {
		config.Selector.MaxOvershootPercent = val
	}
	if val := getEnv("SELECTOR_OPTIMIZATION_LEVEL", ""); val != "" {
		config.Selector.OptimizationLevel = val
	}
	if val := getEnvAsInt("SELECTOR_MAX_LOTS", 0); val != 0 {
		config.Selector.MaxLots = val
	}

	if val := getEnv("AUDIT_DRIVER", ""); val != "" {
		config.Audit.Driver = val
	}
	if val := getEnv("AUDIT_DSN", ""); val != "" {
		config.Audit.DSN = val
	}

	if val := getEnv("LOG_LEVEL", ""); val != "" {
		config.Logging.Level = val
	}
	if val := getEnv("LOG_FORMAT", ""); val != "" {
		config.Logging.Format = val
	}
	if val := getEnv("LOG_OUTPUT_PATH", ""); val != "" {
		config.Logging.OutputPath = val
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBoolOK(key string) (bool, bool) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return false, false
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, false
	}
	return value, true
}
