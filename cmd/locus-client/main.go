package main

import (
	"fmt"
	"os"

	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/chess10kp/locus-overlay/internal/ipc"
	"github.com/spf13/cobra"
)

var (
	socketPath string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "locus-client",
	Short:         "Control the locus launcher overlay",
	Long:          "locus-client sends toggle, show and hide requests to a running locus over its unix socket.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return send("toggle")
	},
}

func requestCmd(use, short, message string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(message)
		},
	}
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that locus is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := ipc.Send(resolveSocket(), "ping")
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "socket path (default: $LOCUS_SOCKET, then socket_path from the config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "config file to read socket_path from")

	rootCmd.AddCommand(requestCmd("toggle", "Open the overlay if closed, close it if open", "toggle"))
	rootCmd.AddCommand(requestCmd("show", "Open the overlay if it is closed", "show"))
	rootCmd.AddCommand(requestCmd("hide", "Close the overlay if it is open", "hide"))
	rootCmd.AddCommand(pingCmd)
}

func resolveSocket() string {
	if socketPath != "" {
		return socketPath
	}
	if env := os.Getenv("LOCUS_SOCKET"); env != "" {
		return env
	}
	if cfg, err := config.LoadConfig(configPath); err == nil && cfg.SocketPath != "" {
		return cfg.SocketPath
	}
	return config.DefaultConfig.SocketPath
}

func send(message string) error {
	if _, err := ipc.Send(resolveSocket(), message); err != nil {
		return fmt.Errorf("%w (is locus running?)", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
