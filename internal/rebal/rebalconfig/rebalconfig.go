// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalconfig provides configuration parsing and validation for rebal.
//
// Configuration is stored at rebal.yaml in the rebal base directory.
package rebalconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/reballiquidity"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/bufdev/rebal/internal/rebal/rebalpath"
	"gopkg.in/yaml.v3"
)

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# The ISO 4217 currency code used to display amounts.
#
# Optional. Defaults to BRL.
currency: BRL
# The holdings file, relative to this directory.
#
# Optional. Defaults to holdings.yaml. Files ending in .csv are read as CSV
# with the columns name,class,current_value,liquidity.
holdings_file: holdings.yaml
# Liquidity tags by asset name.
#
# Optional. Tags are "D+N" day counts, a plain number of days, or one of
# "no maturity date" and "at maturity". Assets listed here override the
# liquidity given in the holdings file.
# liquidity:
#   Tesouro Selic 2029: D+1
#   CDB Banco X: "720"
# Asset classes by asset name.
#
# Optional. Classes are class keys or labels. Assets listed here override the
# class given in the holdings file.
# classes:
#   CDB Banco X: post_fixed
#   NTN-B 2035: Inflação
# Additional custom models.
#
# Optional. Each model must sum to 100 and must not reuse the name of one of
# the Conservative, Moderate, or Sophisticated models.
# models:
#   - name: Income
#     weights:
#       - class: post_fixed
#         percent: "60"
#       - class: inflation
#         percent: "40"
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Currency is the ISO 4217 currency code.
	Currency string `yaml:"currency"`
	// HoldingsFile is the holdings file path, relative to the base directory.
	HoldingsFile string `yaml:"holdings_file"`
	// Liquidity maps asset names to liquidity tags.
	Liquidity map[string]string `yaml:"liquidity"`
	// Classes maps asset names to class keys or labels.
	Classes map[string]string `yaml:"classes"`
	// Models is the optional list of custom models.
	Models []ExternalModelConfig `yaml:"models"`
}

// ExternalModelConfig holds a custom model.
type ExternalModelConfig struct {
	// Name is the model name.
	Name string `yaml:"name"`
	// Weights are the class percentages.
	Weights []ExternalWeightConfig `yaml:"weights"`
}

// ExternalWeightConfig holds the target percentage of one class.
type ExternalWeightConfig struct {
	// Class is the class key or label (e.g., "post_fixed", "Pós Fixado").
	Class string `yaml:"class"`
	// Percent is the target percentage (e.g., "7.5").
	Percent string `yaml:"percent"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// CurrencyCode is the upper-case ISO 4217 currency code.
	CurrencyCode string
	// HoldingsFile is the holdings file path as configured.
	HoldingsFile string
	// LiquidityResolver resolves the configured liquidity tags.
	LiquidityResolver reballiquidity.TableResolver
	// Classes maps asset names to their configured classes.
	Classes map[string]rebalasset.Class
	// Catalog resolves the named models plus the configured custom models.
	Catalog *rebalmodel.Catalog
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	currencyCode := strings.ToUpper(strings.TrimSpace(externalConfig.Currency))
	if currencyCode == "" {
		currencyCode = amount.DefaultCurrencyCode
	}
	if money.GetCurrency(currencyCode) == nil {
		return nil, fmt.Errorf("unknown currency %q", externalConfig.Currency)
	}
	liquidityResolver := make(reballiquidity.TableResolver, len(externalConfig.Liquidity))
	for name, tag := range externalConfig.Liquidity {
		if name == "" {
			return nil, errors.New("liquidity asset name is required")
		}
		liquidityResolver[name] = tag
	}
	classes := make(map[string]rebalasset.Class, len(externalConfig.Classes))
	for name, classValue := range externalConfig.Classes {
		if name == "" {
			return nil, errors.New("classes asset name is required")
		}
		class, err := rebalasset.ParseClass(classValue)
		if err != nil {
			return nil, fmt.Errorf("classes: asset %q: %w", name, err)
		}
		if !class.IsValid() {
			return nil, fmt.Errorf("classes: asset %q has no class", name)
		}
		classes[name] = class
	}
	models := make([]*rebalmodel.Allocation, 0, len(externalConfig.Models))
	for _, externalModelConfig := range externalConfig.Models {
		model, err := newModel(externalModelConfig)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	catalog, err := rebalmodel.NewCatalog(models...)
	if err != nil {
		return nil, err
	}
	holdingsFile := externalConfig.HoldingsFile
	if holdingsFile == "" {
		holdingsFile = rebalpath.DefaultHoldingsFileName
	}
	return &Config{
		CurrencyCode:      currencyCode,
		HoldingsFile:      holdingsFile,
		LiquidityResolver: liquidityResolver,
		Classes:           classes,
		Catalog:           catalog,
	}, nil
}

// ClassOverride returns the configured class of an asset.
//
// Lookups are exact first, then case-insensitive.
func (c *Config) ClassOverride(assetName string) (rebalasset.Class, bool) {
	if class, ok := c.Classes[assetName]; ok {
		return class, true
	}
	for name, class := range c.Classes {
		if strings.EqualFold(name, assetName) {
			return class, true
		}
	}
	return rebalasset.ClassUnspecified, false
}

// ReadConfig reads and validates the configuration file from the given base directory.
// Returns a clear error message directing users to run "rebal config init" if the file is missing.
func ReadConfig(dirPath string) (*Config, error) {
	return readConfigFile(rebalpath.ConfigFilePath(dirPath))
}

// InitConfig creates a new configuration file with a documented template.
// Creates the base directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(dirPath string) (string, error) {
	filePath := rebalpath.ConfigFilePath(dirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// ValidateConfigFile reads and validates the configuration file at the given path.
func ValidateConfigFile(filePath string) error {
	_, err := readConfigFile(filePath)
	return err
}

func readConfigFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found at %s, run \"rebal config init\" to create one", filePath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	config, err := NewConfig(externalConfig)
	if err != nil {
		return nil, fmt.Errorf("validating config file %s: %w", filePath, err)
	}
	return config, nil
}

func newModel(externalModelConfig ExternalModelConfig) (*rebalmodel.Allocation, error) {
	if externalModelConfig.Name == "" {
		return nil, errors.New("model name is required")
	}
	weights := make([]rebalmodel.Weight, 0, len(externalModelConfig.Weights))
	for _, externalWeightConfig := range externalModelConfig.Weights {
		class, err := rebalasset.ParseClass(externalWeightConfig.Class)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", externalModelConfig.Name, err)
		}
		percent, err := amount.Parse(externalWeightConfig.Percent)
		if err != nil {
			return nil, fmt.Errorf("model %q: class %q: %w", externalModelConfig.Name, externalWeightConfig.Class, err)
		}
		weights = append(weights, rebalmodel.Weight{Class: class, Percent: percent})
	}
	return rebalmodel.NewAllocation(externalModelConfig.Name, weights)
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
