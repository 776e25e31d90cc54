package cmd

import (
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/config"
)

var (
	configFlag    string
	templatesFlag string
	logLevelFlag  string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardsight",
	Short: "Recognize playing cards in table images and play blackjack with them",
	Long: `Cardsight finds playing cards in a rendered table image, identifies each one
against a catalog of reference images and scores blackjack hands from what it sees.

Catalogs live in your catalog library (XDG_DATA_HOME/cardsight/catalogs) and the
default one is chosen in XDG_CONFIG_HOME/cardsight/config.toml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		return setupLogging(s.LogLevel)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a config file (default XDG_CONFIG_HOME/cardsight/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&templatesFlag, "templates", "t", "", "Catalog name from your library or a path to a template directory")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// loadSettings reads the config file and applies the persistent flags
func loadSettings() (config.Settings, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFlag != "" {
		cfg, err = config.LoadConfigFile(configFlag)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return config.Settings{}, fmt.Errorf("error loading config: %w", err)
	}

	s := cfg.Settings()
	if templatesFlag != "" {
		path, err := config.GetCatalogPath(templatesFlag)
		if err != nil {
			return config.Settings{}, err
		}
		if s.DeckDirectory == s.TemplateDirectory {
			s.DeckDirectory = path
		}
		s.TemplateDirectory = path
	}
	if logLevelFlag != "" {
		s.LogLevel = logLevelFlag
	}
	if m, err := catalog.ReadManifest(s.TemplateDirectory); err == nil && m != nil && m.Catalog.CardBack != "" {
		s.CardBack = m.Catalog.CardBack
	}
	return s, nil
}

// setupLogging routes slog through the pterm logger at the given level
func setupLogging(level string) error {
	var l pterm.LogLevel
	switch strings.ToLower(level) {
	case "debug":
		l = pterm.LogLevelDebug
	case "", "info":
		l = pterm.LogLevelInfo
	case "warn", "warning":
		l = pterm.LogLevelWarn
	case "error":
		l = pterm.LogLevelError
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	handler := pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(l))
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadTemplates loads the reference catalog named by the settings
func loadTemplates(s config.Settings) (*catalog.Catalog, error) {
	if s.TemplateDirectory == "" {
		return nil, fmt.Errorf("no template catalog configured, run 'cardsight catalog init'")
	}
	c, err := catalog.Load(s.TemplateDirectory, s.CardBack)
	if err != nil {
		return nil, err
	}
	slog.Debug("catalog loaded", "path", c.Path, "cards", c.Len(), "size", c.Size())
	return c, nil
}

// loadBack loads the card back at the table card size. A catalog without
// one yields nil.
func loadBack(s config.Settings) image.Image {
	for _, dir := range []string{s.DeckDirectory, s.TemplateDirectory} {
		path, err := catalog.FindImage(dir, s.CardBack)
		if err != nil {
			continue
		}
		img, err := catalog.LoadImage(path)
		if err != nil {
			slog.Warn("unreadable card back", "path", path, "error", err)
			return nil
		}
		return catalog.Resize(img, s.CardSize)
	}
	return nil
}
