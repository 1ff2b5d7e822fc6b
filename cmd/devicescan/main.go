// Devicescan discovers the devices around this host: Bluetooth LE
// peripherals in range and hosts on the local IPv4 subnet.
//
// Usage:
//
//	devicescan [command] [flags]
//
// Every completed scan is recorded in the history database.
// See 'devicescan --help' for available commands.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcuoli/go-devicescan/internal/config"
	"github.com/marcuoli/go-devicescan/internal/logging"
	"github.com/marcuoli/go-devicescan/pkg/devicescan"
)

var (
	configPath string
	logLevel   string
	debugLevel string
	verbose    bool

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "devicescan",
	Short: "Discover nearby radio devices and hosts on the local network",
	Long: `Devicescan runs a Bluetooth LE scan and a sweep of the local /24 subnet
side by side and records the merged result as a session.

Configuration is read from $DEVICESCAN_CONFIG, ./devicescan.yaml or
~/.config/devicescan/config.yaml, in that order.`,
	Version:       devicescan.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: search the standard locations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&debugLevel, "debug-level", "", "Scan trace detail (off, basic, verbose; default follows --log-level)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level debug")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(devicescan.VersionInfo())
	},
}

func setup() error {
	var (
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	if err := logging.Initialize(level); err != nil {
		return err
	}
	devicescan.SetDebugLogger(logging.DebugSink())
	devicescan.SetDebugLevel(logging.DebugLevel())
	if debugLevel != "" {
		dl, err := devicescan.ParseDebugLevel(debugLevel)
		if err != nil {
			return err
		}
		devicescan.SetDebugLevel(dl)
	}
	if path != "" {
		logging.Debug("Config loaded from " + path)
	}
	return nil
}

func parsePorts(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("ports list is empty")
	}
	parts := strings.Split(s, ",")
	ports := make([]int, 0, len(parts))
	for _, p := range parts {
		var v int
		_, err := fmt.Sscanf(strings.TrimSpace(p), "%d", &v)
		if err != nil || v <= 0 || v > 65535 {
			return nil, fmt.Errorf("invalid port: %q", p)
		}
		ports = append(ports, v)
	}
	return ports, nil
}
