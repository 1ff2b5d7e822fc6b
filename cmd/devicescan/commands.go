package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcuoli/go-devicescan/internal/config"
	"github.com/marcuoli/go-devicescan/internal/logging"
	"github.com/marcuoli/go-devicescan/internal/store/sqlite"
	"github.com/marcuoli/go-devicescan/pkg/devicescan"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/scanerr"
)

// Scan command flags
var (
	scanTimeout time.Duration
	scanPorts   string
	noRadio     bool
	noSave      bool
	jsonOutput  bool
)

// History command flags
var (
	historySince time.Duration
	historyName  string
	historyLimit int
	deleteAll    bool
)

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Per-branch scan timeout (default from config, 15s)")
	scanCmd.Flags().StringVar(&scanPorts, "ports", "", "Comma-separated TCP ports to probe (default from config)")
	scanCmd.Flags().BoolVar(&noRadio, "no-radio", false, "Skip the Bluetooth scan")
	scanCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not record the session in the history database")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the session as JSON")

	historyCmd.Flags().DurationVar(&historySince, "since", 0, "Only sessions recorded within this duration (e.g. 24h)")
	historyCmd.Flags().StringVar(&historyName, "name", "", "Only sessions containing a device whose name matches")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of sessions to list (0 for all)")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print sessions as JSON")

	historyDeleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete every recorded session")
	historyCmd.AddCommand(historyDeleteCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for radio devices and local network hosts",
	Long: `Scan runs the Bluetooth LE scan and the subnet sweep together.

The session is all or nothing: if either branch fails (adapter off,
no active network interface), nothing is printed or recorded. Use
--no-radio on machines without Bluetooth.`,
	Example: `  # Full scan with defaults
  devicescan scan

  # Network only, custom ports, JSON output
  devicescan scan --no-radio --ports 22,80,443 --json`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanPorts != "" {
		ports, err := parsePorts(scanPorts)
		if err != nil {
			return fmt.Errorf("invalid ports: %w", err)
		}
		cfg.Ports = ports
	}
	if scanTimeout > 0 {
		cfg.BranchTimeout = config.Duration(scanTimeout)
	}

	var store devicescan.SessionStore
	if !noSave {
		s, err := sqlite.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer s.Close()
		store = s
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	coord := newCoordinator(cfg, cfg.Radio && !noRadio, store)
	if !jsonOutput {
		fmt.Fprintf(cmd.OutOrStdout(), "Scanning (timeout: %v per branch)...\n\n", cfg.BranchTimeout.Duration())
	}

	session, err := coord.PerformFullScan(ctx)
	if err != nil {
		logging.Error("Scan failed", zap.Error(err))
		return scanError(err)
	}
	logging.LogSession(session)

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), session)
	}
	printSession(cmd.OutOrStdout(), session)
	return nil
}

func scanError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return errors.New("scan interrupted")
	case errors.Is(err, scanerr.ErrRadioUnavailable),
		errors.Is(err, scanerr.ErrRadioPoweredOff),
		errors.Is(err, scanerr.ErrRadioUnauthorized):
		return fmt.Errorf("%w (use --no-radio to scan the network only)", err)
	case errors.Is(err, scanerr.ErrNetworkUnavailable):
		return fmt.Errorf("%w (set 'interface' in the config file)", err)
	}
	return err
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scan sessions",
	Example: `  # Sessions from the last day
  devicescan history --since 24h

  # Sessions that saw a device called "printer"
  devicescan history --name printer`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := sqlite.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	var sessions []devicescan.Session
	switch {
	case historyName != "":
		sessions, err = s.SessionsMatching(ctx, historyName)
	case historySince > 0:
		now := time.Now()
		sessions, err = s.SessionsBetween(ctx, now.Add(-historySince), now)
	default:
		sessions, err = s.Sessions(ctx)
	}
	if err != nil {
		return err
	}
	if historyName != "" && historySince > 0 {
		sessions = since(sessions, time.Now().Add(-historySince))
	}
	if historyLimit > 0 && len(sessions) > historyLimit {
		sessions = sessions[:historyLimit]
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), sessions)
	}
	printHistory(cmd.OutOrStdout(), sessions)
	return nil
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [session-id...]",
	Short: "Delete recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteAll && len(args) == 0 {
			return errors.New("give at least one session ID, or --all")
		}
		s, err := sqlite.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer s.Close()

		if deleteAll {
			if err := s.DeleteAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All sessions deleted.")
			return nil
		}
		for _, id := range args {
			if err := s.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		}
		return nil
	},
}

func since(sessions []devicescan.Session, from time.Time) []devicescan.Session {
	out := sessions[:0]
	for _, s := range sessions {
		if !s.Timestamp.Before(from) {
			out = append(out, s)
		}
	}
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSession(w io.Writer, s devicescan.Session) {
	if s.DeviceCount == 0 {
		fmt.Fprintln(w, "No devices found.")
		return
	}
	fmt.Fprintf(w, "Found %d device(s): %d radio, %d network\n\n", s.DeviceCount, s.RadioCount(), s.IPCount())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tADDRESS\tDETAILS")
	for _, d := range s.Devices {
		switch {
		case d.Radio != nil:
			fmt.Fprintf(tw, "radio\t%s\t%s\t%d dBm, %s\n", d.Name(), d.Radio.ID, d.Radio.SignalStrength, d.Radio.Connection)
		case d.IP != nil:
			fmt.Fprintf(tw, "ip\t%s\t%s\t%s\n", d.Name(), d.IP.IPAddress, ipDetails(d.IP))
		}
	}
	tw.Flush()
	fmt.Fprintf(w, "\nSession %s\n", s.ID)
}

func ipDetails(d *devicescan.IPDevice) string {
	var parts []string
	if d.HardwareAddress != "" {
		parts = append(parts, d.HardwareAddress)
	}
	if d.Vendor != "" {
		parts = append(parts, d.Vendor)
	}
	if len(d.OpenPorts) > 0 {
		parts = append(parts, fmt.Sprintf("ports %v", d.OpenPorts))
	}
	if d.Server != "" {
		parts = append(parts, d.Server)
	}
	return strings.Join(parts, ", ")
}

func printHistory(w io.Writer, sessions []devicescan.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tTIME\tDEVICES\tRADIO\tNETWORK")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
			s.ID, s.Timestamp.Local().Format(time.DateTime), s.DeviceCount, s.RadioCount(), s.IPCount())
	}
	tw.Flush()
}
