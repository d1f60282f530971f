package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"sercom-core/internal/hub"
	"sercom-core/internal/observability"
)

type fileConfig struct {
	Listen      string `toml:"listen"`
	AcceptRate  int    `toml:"accept_rate"`
	AcceptBurst int    `toml:"accept_burst"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

type config struct {
	Hub hub.Options
	Log observability.LogConfig
}

func defaultConfig() config {
	return config{
		Hub: hub.Options{Addr: ":7700", AcceptRate: 10, AcceptBurst: 20},
		Log: observability.LogConfig{Level: "info", Format: "console"},
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load hub config: %w", err)
	}

	if meta.IsDefined("listen") {
		cfg.Hub.Addr = raw.Listen
	}
	if meta.IsDefined("accept_rate") {
		cfg.Hub.AcceptRate = raw.AcceptRate
	}
	if meta.IsDefined("accept_burst") {
		cfg.Hub.AcceptBurst = raw.AcceptBurst
	}
	if meta.IsDefined("log_level") {
		cfg.Log.Level = raw.LogLevel
	}
	if meta.IsDefined("log_format") {
		cfg.Log.Format = raw.LogFormat
	}
	if meta.IsDefined("log_file") {
		cfg.Log.File = raw.LogFile
	}
	return cfg, nil
}
