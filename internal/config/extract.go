package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ExtractConfig holds tunable extraction and gating policy. The words-per-page
// value is a product heuristic, not real pagination, so it lives in config
// rather than code.
type ExtractConfig struct {
	WordsPerPage  int `mapstructure:"wordsPerPage"`
	GuestMaxPages int `mapstructure:"guestMaxPages"`
}

func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		WordsPerPage:  500,
		GuestMaxPages: 2,
	}
}

// ExtractConfigHolder serves the current ExtractConfig and hot-reloads it
// when the backing file changes.
type ExtractConfigHolder struct {
	current atomic.Value // holds ExtractConfig
}

func NewExtractConfigHolder() (*ExtractConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("extract")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/docbrief/config")
	v.AddConfigPath("/etc/docbrief")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DOCBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultExtractConfig()
	v.SetDefault("extract.wordsPerPage", defaults.WordsPerPage)
	v.SetDefault("extract.guestMaxPages", defaults.GuestMaxPages)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg ExtractConfig
	if err := v.UnmarshalKey("extract", &cfg); err != nil {
		return nil, err
	}
	if err := validateExtractConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ExtractConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ExtractConfig
		if err := v.UnmarshalKey("extract", &updated); err != nil {
			log.Printf("[extract-config] reload failed: %v", err)
			return
		}
		if err := validateExtractConfig(updated); err != nil {
			log.Printf("[extract-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[extract-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ExtractConfigHolder) Get() ExtractConfig {
	return h.current.Load().(ExtractConfig)
}

// NewStaticExtractConfigHolder returns a holder pinned to the given values.
// Intended for tests.
func NewStaticExtractConfigHolder(cfg ExtractConfig) *ExtractConfigHolder {
	holder := &ExtractConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateExtractConfig(cfg ExtractConfig) error {
	if cfg.WordsPerPage <= 0 {
		return errors.New("extract.wordsPerPage must be positive")
	}
	if cfg.GuestMaxPages <= 0 {
		return errors.New("extract.guestMaxPages must be positive")
	}
	return nil
}
