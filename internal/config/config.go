package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Size is a width/height pair in pixels
type Size struct {
	W int
	H int
}

// IsZero reports whether either dimension is unset
func (s Size) IsZero() bool {
	return s.W <= 0 || s.H <= 0
}

// Config represents the application configuration file
type Config struct {
	DefaultCatalog    string  `toml:"default_catalog"`
	DeckDirectory     string  `toml:"deck_directory"`
	CanonicalCardSize [2]int  `toml:"canonical_card_size"`
	CardSize          [2]int  `toml:"card_size"`
	MinContourArea    float64 `toml:"min_contour_area"`
	MatchThreshold    float64 `toml:"match_threshold"`
	Background        string  `toml:"background"`
	BackgroundColor   string  `toml:"background_color"`
	CardBack          string  `toml:"card_back"`
	LogLevel          string  `toml:"log_level"`
	MemoizeIdentity   bool    `toml:"memoize_identity"`
}

// Settings is the recognition and table configuration handed to the
// catalog loader, detector, rectifier, matcher and synthesizer.
type Settings struct {
	TemplateDirectory string
	DeckDirectory     string
	// CanonicalCardSize is the rectification target. Zero means the size
	// of the first catalog entry.
	CanonicalCardSize Size
	// CardSize is the size cards are rendered at on the table.
	CardSize        Size
	MinContourArea  float64
	MatchThreshold  float64
	Background      string
	BackgroundColor string
	CardBack        string
	LogLevel        string
	MemoizeIdentity bool
}

const (
	DefaultMinContourArea  = 5000
	DefaultMatchThreshold  = 0.6
	DefaultBackgroundColor = "#0b6623"
	DefaultCatalogName     = "standard"
	DefaultCardBack        = "back"
)

// DefaultCardSize is the table rendering size the default area threshold is calibrated to.
var DefaultCardSize = Size{W: 100, H: 145}

// DefaultSettings returns the settings used when no config file overrides them
func DefaultSettings() Settings {
	return Settings{
		CardSize:        DefaultCardSize,
		MinContourArea:  DefaultMinContourArea,
		MatchThreshold:  DefaultMatchThreshold,
		BackgroundColor: DefaultBackgroundColor,
		CardBack:        DefaultCardBack,
		LogLevel:        "info",
	}
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetCatalogLibraryPath returns the directory holding template catalogs
func GetCatalogLibraryPath() string {
	return filepath.Join(GetXDGDataHome(), "cardsight", "catalogs")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "cardsight", "config.toml")
}

// LoadConfig loads the config file, creating it with defaults when missing
func LoadConfig() (*Config, error) {
	return LoadConfigFile(GetConfigFilePath())
}

// LoadConfigFile loads the config at configPath, creating it with defaults when missing
func LoadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	config := defaultConfig()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	return config, nil
}

func defaultConfig() *Config {
	s := DefaultSettings()
	return &Config{
		DefaultCatalog:  DefaultCatalogName,
		CardSize:        [2]int{s.CardSize.W, s.CardSize.H},
		MinContourArea:  s.MinContourArea,
		MatchThreshold:  s.MatchThreshold,
		BackgroundColor: s.BackgroundColor,
		CardBack:        s.CardBack,
		LogLevel:        s.LogLevel,
	}
}

// createDefaultConfig creates a default config file
func createDefaultConfig(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := defaultConfig()
	if err := SaveConfigFile(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfigFile writes config to configPath as TOML
func SaveConfigFile(configPath string, config *Config) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}

// GetCatalogPath returns the path to a catalog, either in the catalog library or a relative path
func GetCatalogPath(name string) (string, error) {
	catalogPath := filepath.Join(GetCatalogLibraryPath(), name)
	if _, err := os.Stat(catalogPath); err == nil {
		return catalogPath, nil
	}

	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	return "", fmt.Errorf("catalog not found: %s", name)
}

// SetDefaultCatalog sets the default catalog in the config
func SetDefaultCatalog(name string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	config.DefaultCatalog = name
	return SaveConfigFile(GetConfigFilePath(), config)
}

// Settings resolves the config file into recognition settings. Zero or
// missing values fall back to DefaultSettings.
func (c *Config) Settings() Settings {
	s := DefaultSettings()

	if c.DefaultCatalog != "" {
		path, err := GetCatalogPath(c.DefaultCatalog)
		if err != nil {
			path = filepath.Join(GetCatalogLibraryPath(), c.DefaultCatalog)
		}
		s.TemplateDirectory = path
	}
	s.DeckDirectory = c.DeckDirectory
	if s.DeckDirectory == "" {
		s.DeckDirectory = s.TemplateDirectory
	}

	s.CanonicalCardSize = Size{W: c.CanonicalCardSize[0], H: c.CanonicalCardSize[1]}
	if size := (Size{W: c.CardSize[0], H: c.CardSize[1]}); !size.IsZero() {
		s.CardSize = size
	}
	if c.MinContourArea > 0 {
		s.MinContourArea = c.MinContourArea
	}
	if c.MatchThreshold > 0 {
		s.MatchThreshold = c.MatchThreshold
	}
	if c.BackgroundColor != "" {
		s.BackgroundColor = c.BackgroundColor
	}
	if c.CardBack != "" {
		s.CardBack = c.CardBack
	}
	if c.LogLevel != "" {
		s.LogLevel = c.LogLevel
	}
	s.Background = c.Background
	s.MemoizeIdentity = c.MemoizeIdentity

	return s
}
