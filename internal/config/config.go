package config

import (
	"strings"

	"github.com/spf13/viper"

	"trade-journal-go/internal/economics"
)

// Config holds all configuration for the application.
type Config struct {
	Server      Server      `mapstructure:"server"`
	Database    Database    `mapstructure:"database"`
	Logger      Logger      `mapstructure:"logger"`
	Auth        Auth        `mapstructure:"auth"`
	Journal     Journal     `mapstructure:"journal"`
	Charges     Charges     `mapstructure:"charges"`
	Attachments Attachments `mapstructure:"attachments"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Auth holds the configuration for credential resolution.
type Auth struct {
	BcryptCost      int     `mapstructure:"bcrypt_cost"`
	LoginRateLimit  float64 `mapstructure:"login_rate_limit"`
	LoginRateBurst  int     `mapstructure:"login_rate_burst"`
	SessionLifetime int     `mapstructure:"session_lifetime_minutes"`
}

// Journal holds journaling policy that is not part of the charge schedule.
type Journal struct {
	// DefaultCapital and DefaultRiskPercent seed the position-size
	// calculator when the caller does not supply them.
	DefaultCapital     float64 `mapstructure:"default_capital"`
	DefaultRiskPercent float64 `mapstructure:"default_risk_percent"`

	// PsychologyBlocklist lists emotional states under which new trades
	// are refused at the entry surface.
	PsychologyBlocklist []string `mapstructure:"psychology_blocklist"`
}

// Charges holds the brokerage fee schedule. The rates mirror a retail
// brokerage fee card; every value can be overridden from the config file
// or environment.
type Charges struct {
	BrokerageRate     float64 `mapstructure:"brokerage_rate"`
	BrokerageCap      float64 `mapstructure:"brokerage_cap"`
	EquityTxnTaxRate  float64 `mapstructure:"equity_txn_tax_rate"`
	OptionTxnTaxRate  float64 `mapstructure:"option_txn_tax_rate"`
	ExchangeFeeRate   float64 `mapstructure:"exchange_fee_rate"`
	GovernmentTaxRate float64 `mapstructure:"government_tax_rate"`
	StampDutyRate     float64 `mapstructure:"stamp_duty_rate"`
}

// Schedule converts the configured rates into the calculator's schedule.
func (c Charges) Schedule() economics.ChargeSchedule {
	return economics.ChargeSchedule{
		BrokerageRate:     c.BrokerageRate,
		BrokerageCap:      c.BrokerageCap,
		EquityTxnTaxRate:  c.EquityTxnTaxRate,
		OptionTxnTaxRate:  c.OptionTxnTaxRate,
		ExchangeFeeRate:   c.ExchangeFeeRate,
		GovernmentTaxRate: c.GovernmentTaxRate,
		StampDutyRate:     c.StampDutyRate,
	}
}

// Attachments holds the configuration for screenshot storage.
type Attachments struct {
	Dir string `mapstructure:"dir"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	err = viper.ReadInConfig()
	if err != nil {
		// A missing config file is fine, the defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}

func setDefaults() {
	viper.SetDefault("server.port", 8384)
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	viper.SetDefault("auth.bcrypt_cost", 10)
	viper.SetDefault("auth.login_rate_limit", 1) // attempts per second, per user
	viper.SetDefault("auth.login_rate_burst", 5)
	viper.SetDefault("auth.session_lifetime_minutes", 720)

	viper.SetDefault("journal.default_capital", 100000)
	viper.SetDefault("journal.default_risk_percent", 1)
	viper.SetDefault("journal.psychology_blocklist", []string{"FOMO", "Revenge Trading Urge"})

	viper.SetDefault("charges.brokerage_rate", 0.0003)
	viper.SetDefault("charges.brokerage_cap", 40)
	viper.SetDefault("charges.equity_txn_tax_rate", 0.0001)
	viper.SetDefault("charges.option_txn_tax_rate", 0.0005)
	viper.SetDefault("charges.exchange_fee_rate", 0.0000325)
	viper.SetDefault("charges.government_tax_rate", 0.18)
	viper.SetDefault("charges.stamp_duty_rate", 0.00003)

	viper.SetDefault("attachments.dir", "attachments")
}
