package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyes-games/mpauth/pkg/log"
)

type logFlags struct {
	connID    string
	peer      string
	role      string
	layer     string
	direction string
	category  string
	timeStart string
	timeEnd   string
}

func (f *logFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.connID, "conn-id", "", "filter by connection ID")
	fl.StringVar(&f.peer, "peer", "", "filter by peer certificate name")
	fl.StringVar(&f.role, "role", "", "filter by role (server, client)")
	fl.StringVar(&f.layer, "layer", "", "filter by layer (transport, wire, service)")
	fl.StringVar(&f.direction, "direction", "", "filter by direction (in, out)")
	fl.StringVar(&f.category, "category", "", "filter by category (message, state, error)")
	fl.StringVar(&f.timeStart, "time-start", "", "only events at or after this RFC 3339 time")
	fl.StringVar(&f.timeEnd, "time-end", "", "only events before this RFC 3339 time")
}

// filter builds the reader filter from the flags.
func (f *logFlags) filter() (log.Filter, error) {
	filter := log.Filter{
		ConnectionID: f.connID,
		PeerName:     f.peer,
	}

	if f.role != "" {
		r, err := parseRole(f.role)
		if err != nil {
			return filter, err
		}
		filter.Role = &r
	}
	if f.layer != "" {
		l, err := parseLayer(f.layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if f.direction != "" {
		d, err := parseDirection(f.direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if f.category != "" {
		c, err := parseCategory(f.category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if f.timeStart != "" {
		t, err := time.Parse(time.RFC3339, f.timeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if f.timeEnd != "" {
		t, err := time.Parse(time.RFC3339, f.timeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

func logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect protocol log files",
	}
	cmd.AddCommand(logViewCmd(), logFilterCmd(), logExportCmd(), logStatsCmd())
	return cmd
}

func logViewCmd() *cobra.Command {
	var f logFlags
	cmd := &cobra.Command{
		Use:   "view [flags] <file.mlog>",
		Short: "View a log file in human-readable format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			return RunView(args[0], filter, cmd.OutOrStdout())
		},
	}
	f.register(cmd)
	return cmd
}

func logFilterCmd() *cobra.Command {
	var (
		f      logFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "filter [flags] -o <out.mlog> <file.mlog>",
		Short: "Write the matching events to a new log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			n, err := RunFilter(args[0], output, filter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filtered %d events to %s\n", n, output)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func logExportCmd() *cobra.Command {
	var (
		f      logFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "export [flags] <file.mlog>",
		Short: "Export a log file as JSON lines or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}
			return RunExport(args[0], format, filter, cmd.OutOrStdout())
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&format, "format", "jsonl", "output format (jsonl, csv)")
	return cmd
}

func logStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.mlog>",
		Short: "Show statistics about a log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunStats(args[0], cmd.OutOrStdout())
		},
	}
}

func parseRole(s string) (log.Role, error) {
	switch strings.ToLower(s) {
	case "server":
		return log.RoleAuthServer, nil
	case "client":
		return log.RoleGameClient, nil
	default:
		return 0, fmt.Errorf("invalid role: %s (must be server or client)", s)
	}
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "service":
		return log.LayerService, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or service)", s)
	}
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}
