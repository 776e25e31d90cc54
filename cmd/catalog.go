package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/config"
)

// catalogCmd represents the catalog command group
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage template catalogs in your catalog library",
	Long:  `Commands for managing the reference image catalogs in your catalog library.`,
}

// catalogListCmd represents the catalog ls command
var catalogListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List available catalogs in your catalog library",
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := config.GetCatalogLibraryPath()
		if _, err := os.Stat(libraryPath); os.IsNotExist(err) {
			fmt.Printf("Catalog library at %s does not exist.\n", libraryPath)
			fmt.Println("Run 'cardsight catalog init' to create it.")
			return nil
		}
		libraryPath, err := filepath.EvalSymlinks(libraryPath)
		if err != nil {
			return fmt.Errorf("error resolving symbolic link: %w", err)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		entries, err := os.ReadDir(libraryPath)
		if err != nil {
			return fmt.Errorf("error reading catalog library: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No catalogs found in your catalog library.")
			fmt.Println("You can add catalogs by copying them to:", libraryPath)
			return nil
		}

		for _, entry := range entries {
			entryPath := filepath.Join(libraryPath, entry.Name())
			info, err := os.Stat(entryPath)
			if err != nil {
				fmt.Printf("Error resolving entry %s: %v\n", entry.Name(), err)
				continue
			}
			if !info.IsDir() {
				continue
			}

			files, err := catalog.ImageFiles(entryPath)
			if err != nil || len(files) == 0 {
				continue
			}
			label := fmt.Sprintf("%s (%s, %d images)", entry.Name(), catalog.DisplayName(entryPath), len(files))
			if entry.Name() == cfg.DefaultCatalog {
				colorize.Green("* %s [DEFAULT]", label)
			} else {
				fmt.Printf("  %s\n", label)
			}
		}
		return nil
	},
}

// catalogSetDefaultCmd represents the catalog set-default command
var catalogSetDefaultCmd = &cobra.Command{
	Use:   "set-default [catalog_name]",
	Short: "Set the default catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		path, err := config.GetCatalogPath(name)
		if err != nil {
			return err
		}
		if _, err := catalog.Load(path, config.DefaultCardBack); err != nil {
			return fmt.Errorf("not a valid catalog: %w", err)
		}
		if err := config.SetDefaultCatalog(name); err != nil {
			return fmt.Errorf("error setting default catalog: %w", err)
		}

		fmt.Printf("Default catalog set to: %s\n", name)
		return nil
	},
}

// catalogInitCmd represents the catalog init command
var catalogInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the catalog library",
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := config.GetCatalogLibraryPath()
		if err := os.MkdirAll(libraryPath, 0755); err != nil {
			return fmt.Errorf("error creating catalog library: %w", err)
		}

		fmt.Println("Catalog library initialized at:", libraryPath)
		fmt.Println("You can now add catalogs by copying them to this directory.")

		if _, err := config.LoadConfig(); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}
		fmt.Println("Config file initialized at:", config.GetConfigFilePath())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogSetDefaultCmd)
	catalogCmd.AddCommand(catalogInitCmd)
}
