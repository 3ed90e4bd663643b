package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chess10kp/locus-overlay/internal/config"
	"github.com/chess10kp/locus-overlay/internal/core"
	"github.com/spf13/cobra"
)

const pidFile = "/tmp/locus-overlay.pid"

// ensureSingleInstance stops a running instance and records our pid.
func ensureSingleInstance() error {
	if data, err := os.ReadFile(pidFile); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid != os.Getpid() {
			process, err := os.FindProcess(pid)
			if err == nil {
				if err := process.Signal(syscall.Signal(0)); err == nil {
					log.Printf("Stopping previous instance (pid %d)", pid)
					process.Signal(syscall.SIGTERM)
					waitForExit(process, 2*time.Second)
				}
			}
		}
	}
	return os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func waitForExit(process *os.Process, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	log.Printf("Previous instance (pid %d) did not exit, killing it", process.Pid)
	process.Kill()
}

func cleanup() {
	os.Remove(pidFile)
}

var (
	configPath string
	logPath    string
)

var rootCmd = &cobra.Command{
	Use:          "locus",
	Short:        "Application launcher overlay for wlroots compositors",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config.toml")
	rootCmd.Flags().StringVar(&logPath, "log", "", "log file (default: locus.log in the config directory)")
}

func run() error {
	cfg, err := config.LoadAndValidateConfig(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		cfg = config.Default()
	}

	if logPath == "" {
		logPath = filepath.Join(config.ExpandPath(cfg.ConfigDir), "locus.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		}
	}

	if err := ensureSingleInstance(); err != nil {
		return fmt.Errorf("failed to ensure single instance: %w", err)
	}
	defer cleanup()

	app, err := core.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("Application error: %v", err)
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
