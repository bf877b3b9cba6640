package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nomina-dev/nomina/internal/model"
)

// Config represents the top-level nomina.yaml configuration.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	QIF      QIFConfig      `yaml:"qif"`
	Balance  BalanceConfig  `yaml:"balance"`
	Output   OutputConfig   `yaml:"output"`
}

// DefaultsConfig holds values applied when a source format carries no
// equivalent information.
type DefaultsConfig struct {
	Currency string `yaml:"currency"`
}

// QIFConfig controls QIF parsing.
type QIFConfig struct {
	AccountType string `yaml:"account_type"` // type of synthesized accounts
}

// BalanceConfig controls the balance check after conversion.
type BalanceConfig struct {
	Lenient bool `yaml:"lenient"`
}

// OutputConfig controls the rendered output.
type OutputConfig struct {
	PruneUnusedAccounts bool `yaml:"prune_unused_accounts"`
}

// Load reads a nomina.yaml file from disk. The file is applied on top of
// Default, so sections it omits keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Currency: model.DefaultCurrency,
		},
		QIF: QIFConfig{
			AccountType: string(model.AccountTypeExpense),
		},
		Balance: BalanceConfig{
			Lenient: true,
		},
		Output: OutputConfig{
			PruneUnusedAccounts: false,
		},
	}
}
