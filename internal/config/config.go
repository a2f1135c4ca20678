package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Databases Databases `yaml:"databases"`
	Server    Server    `yaml:"server"`
	Report    Report    `yaml:"report"`
	Bench     Bench     `yaml:"bench"`
}

type Databases struct {
	Postgres string `yaml:"postgres"`
	MySQL    string `yaml:"mysql"`
	Mongo    string `yaml:"mongo"`
}

type Server struct {
	ListenAddr string `yaml:"listen_addr"`
}

type Report struct {
	// DefaultMarginRate seeds the margin_rate config parameter during
	// setup. It never overwrites an operator-set value.
	DefaultMarginRate string `yaml:"default_margin_rate"`
}

type Bench struct {
	DefaultDuration    string `yaml:"default_duration"`
	DefaultConcurrency int    `yaml:"default_concurrency"`
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8080"
	}
	if config.Report.DefaultMarginRate == "" {
		config.Report.DefaultMarginRate = "0.30"
	}

	return config, nil
}
