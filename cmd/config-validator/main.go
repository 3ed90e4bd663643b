package main

import (
	"fmt"
	"os"

	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/spf13/cobra"
)

var writeDefault bool

var rootCmd = &cobra.Command{
	Use:           "config-validator [path]",
	Short:         "Validate a locus config file",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultPath
		if len(args) > 0 {
			configPath = args[0]
		}

		if writeDefault {
			if _, err := os.Stat(config.ExpandPath(configPath)); err == nil {
				return fmt.Errorf("%s already exists", configPath)
			}
			if err := config.SaveConfig(config.Default(), configPath); err != nil {
				return fmt.Errorf("failed to write default config: %w", err)
			}
			fmt.Printf("Wrote default config to %s\n", configPath)
			return nil
		}

		fmt.Printf("Validating config: %s\n", configPath)
		if err := config.ValidateConfig(configPath); err != nil {
			return err
		}
		fmt.Println("✅ Config is valid!")
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&writeDefault, "write-default", false, "write the default config to path instead of validating it")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("❌ Config validation failed: %v\n", err)
		os.Exit(1)
	}
}
