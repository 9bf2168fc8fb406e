package config

import (
	"os"

	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotEnoughServers  = errors.New("there are not enough specified servers")
	ErrUnknownDriver     = errors.New("unknown database driver")
	ErrEmptyDatabasePath = errors.New("empty database dsn")
)

const (
	minServerCount = 2

	SqliteDriver   = "sqlite"
	PostgresDriver = "postgres"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RuleConfig struct {
	// Restricted is the color forbidden moves apply to: "black", "white" or
	// "none".
	Restricted string `yaml:"restricted"`
}

type config struct {
	Servers  []ServerConfig `yaml:"outer_servers"`
	Database DatabaseConfig `yaml:"database"`
	Rule     RuleConfig     `yaml:"rule"`
}

func New(cfgPath string) (config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return config{}, err
	}
	defer func() {
		_ = file.Close()
	}()
	cfg := config{
		Database: DatabaseConfig{Driver: SqliteDriver, DSN: "omok.db"},
		Rule:     RuleConfig{Restricted: "black"},
	}
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return config{}, errors.WithMessage(err, "decode yaml config")
	}
	if len(cfg.Servers) < minServerCount {
		return config{}, ErrNotEnoughServers
	}
	if err := cfg.Database.validate(); err != nil {
		return config{}, err
	}
	if _, err := cfg.Rule.RestrictedColor(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c DatabaseConfig) validate() error {
	switch c.Driver {
	case SqliteDriver, PostgresDriver:
	default:
		return errors.WithMessagef(ErrUnknownDriver, "%q", c.Driver)
	}
	if c.DSN == "" {
		return ErrEmptyDatabasePath
	}
	return nil
}

func (c RuleConfig) RestrictedColor() (domain.Color, error) {
	if c.Restricted == "" || c.Restricted == "none" {
		return domain.NoColor, nil
	}
	color, err := domain.ParseColor(c.Restricted)
	if err != nil {
		return domain.NoColor, errors.WithMessage(err, "parse restricted color")
	}
	return color, nil
}
