package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// TaxConfig holds the tax parameters applied to new documents.
type TaxConfig struct {
	IGVRate         float64 `mapstructure:"igvRate"`
	DefaultCurrency string  `mapstructure:"defaultCurrency"`
}

func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		IGVRate:         0.18,
		DefaultCurrency: "PEN",
	}
}

// Rate returns the IGV rate as a decimal fraction.
func (t TaxConfig) Rate() decimal.Decimal {
	return decimal.NewFromFloat(t.IGVRate)
}

type TaxConfigHolder struct {
	current atomic.Value // holds TaxConfig
}

// NewTaxConfigHolder reads tax.yml and keeps it hot-reloaded.
func NewTaxConfigHolder() (*TaxConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("tax")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/facturador/config")
	v.AddConfigPath("/etc/facturador")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FACTURADOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTaxConfig()
	v.SetDefault("tax.igvRate", defaults.IGVRate)
	v.SetDefault("tax.defaultCurrency", defaults.DefaultCurrency)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	var cfg TaxConfig
	if err := v.UnmarshalKey("tax", &cfg); err != nil {
		return nil, err
	}
	if err := validateTaxConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticTaxConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated TaxConfig
		if err := v.UnmarshalKey("tax", &updated); err != nil {
			log.Printf("[tax-config] reload failed: %v", err)
			return
		}
		if err := validateTaxConfig(updated); err != nil {
			log.Printf("[tax-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[tax-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticTaxConfigHolder returns a holder that never reloads.
func NewStaticTaxConfigHolder(cfg TaxConfig) *TaxConfigHolder {
	holder := &TaxConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *TaxConfigHolder) Get() TaxConfig {
	return h.current.Load().(TaxConfig)
}

func (h *TaxConfigHolder) IGVRate() decimal.Decimal {
	return h.Get().Rate()
}

func validateTaxConfig(cfg TaxConfig) error {
	if cfg.IGVRate < 0 || cfg.IGVRate >= 1 {
		return errors.New("tax.igvRate must be a fraction in [0, 1)")
	}
	if strings.TrimSpace(cfg.DefaultCurrency) == "" {
		return errors.New("tax.defaultCurrency cannot be empty")
	}
	return nil
}
