package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kadirbelkuyu/schemer/internal/app"
	"github.com/kadirbelkuyu/schemer/internal/config"
	"github.com/kadirbelkuyu/schemer/internal/report"
	"github.com/kadirbelkuyu/schemer/internal/snapshots"
	"github.com/kadirbelkuyu/schemer/pkg/logger"
)

// Exit codes: 0 when every peer matches, exitDrift when any table differs or
// is missing, 1 on errors.
const exitDrift = 2

var exitFunc = os.Exit

// errDrift is returned by compare when differences were found; it is mapped
// to exitDrift and never printed.
var errDrift = errors.New("schema differences found")

type globalFlags struct {
	verbose   bool
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "schemer",
		Short:         "Compare database schemas across environments",
		Long:          `Capture table and column metadata from several databases and report, per table, which targets match the first (master) target.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newCompareCmd(flags))
	rootCmd.AddCommand(newSnapshotCmd(flags))
	rootCmd.AddCommand(newTargetsCmd(flags))
	return rootCmd
}

func newCompareCmd(flags *globalFlags) *cobra.Command {
	var (
		configPath   string
		format       string
		mode         string
		identity     string
		parallel     int
		timeout      time.Duration
		showProgress bool
		noFail       bool
		snapshotDir  string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare every target against the master",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("cannot load config: %w", err)
			}

			log, err := newLogger(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			req := app.CompareRequest{
				Format:   format,
				Mode:     mode,
				Identity: identity,
				Parallel: parallel,
				Timeout:  timeout,
			}
			if showProgress {
				req.Progress = cmd.ErrOrStderr()
			}

			svc := app.NewService(cmd.OutOrStdout(), log, snapshots.NewStore(snapshotDir))
			result, err := svc.Compare(cmd.Context(), cfg, req)
			if err != nil {
				return err
			}

			if result.HasDifferences() && !noFail {
				return errDrift
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the targets configuration file")
	cmd.Flags().StringVar(&format, "format", report.FormatText, "Report format: "+strings.Join(report.Formats, ", "))
	cmd.Flags().StringVar(&mode, "mode", "", "Column alignment: positional or name (overrides config)")
	cmd.Flags().StringVar(&identity, "identity", "", "Attribute naming a column (overrides config)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Targets acquired concurrently (overrides config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-target acquisition timeout (overrides config)")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar on stderr")
	cmd.Flags().BoolVar(&noFail, "no-fail-on-diff", false, "Exit 0 even when differences are found")
	cmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "Directory holding snapshot targets")
	cmd.MarkFlagRequired("config")
	return cmd
}

func newSnapshotCmd(flags *globalFlags) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, list and delete schema snapshots",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Snapshot directory (default \"snapshots\")")

	var (
		configPath string
		targetID   string
		name       string
	)
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Capture a target's schema into the snapshot directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("cannot load config: %w", err)
			}
			log, err := newLogger(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if targetID == "" {
				targetID = cfg.MasterTarget().ID
			}
			svc := app.NewService(cmd.OutOrStdout(), log, snapshots.NewStore(dir))
			_, err = svc.SaveSnapshot(cmd.Context(), cfg, targetID, name)
			return err
		},
	}
	saveCmd.Flags().StringVar(&configPath, "config", "", "Path to the targets configuration file")
	saveCmd.Flags().StringVar(&targetID, "target", "", "Target id to capture (default master)")
	saveCmd.Flags().StringVar(&name, "name", "", "Snapshot name (default <target>-<timestamp>)")
	saveCmd.MarkFlagRequired("config")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.NewService(cmd.OutOrStdout(), nil, snapshots.NewStore(dir)).ListSnapshots()
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.NewService(cmd.OutOrStdout(), nil, snapshots.NewStore(dir)).DeleteSnapshot(args[0])
		},
	}

	cmd.AddCommand(saveCmd, listCmd, deleteCmd)
	return cmd
}

func newTargetsCmd(flags *globalFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List configured targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("cannot load config: %w", err)
			}
			return app.NewService(cmd.OutOrStdout(), nil, nil).ListTargets(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the targets configuration file")
	cmd.MarkFlagRequired("config")
	return cmd
}

func newLogger(flags *globalFlags, w io.Writer) (*logger.Logger, error) {
	switch flags.logFormat {
	case "", "text":
		return logger.New(logger.Options{Verbose: flags.verbose, Output: w}), nil
	case "json":
		return logger.New(logger.Options{Verbose: flags.verbose, Output: w, JSON: true}), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", flags.logFormat)
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errDrift) {
			return exitDrift
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}
