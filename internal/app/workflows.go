package app

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/kadirbelkuyu/schemer/internal/acquire"
	"github.com/kadirbelkuyu/schemer/internal/compare"
	"github.com/kadirbelkuyu/schemer/internal/config"
	"github.com/kadirbelkuyu/schemer/internal/introspect"
	"github.com/kadirbelkuyu/schemer/internal/report"
	"github.com/kadirbelkuyu/schemer/internal/snapshots"
	"github.com/kadirbelkuyu/schemer/pkg/logger"
)

// Service runs the command workflows. Reports and listings go to out, logs
// go through log.
type Service struct {
	out   io.Writer
	log   *logger.Logger
	store *snapshots.Store
}

func NewService(out io.Writer, log *logger.Logger, store *snapshots.Store) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if store == nil {
		store = snapshots.NewStore("")
	}
	return &Service{out: out, log: log, store: store}
}

// CompareRequest carries command-line overrides on top of the config file.
type CompareRequest struct {
	Format   string
	Mode     string
	Identity string
	Parallel int
	Timeout  time.Duration
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// Compare acquires every target, compares them against the first and renders
// the result.
func (s *Service) Compare(ctx context.Context, cfg *config.Config, req CompareRequest) (*compare.Result, error) {
	opts, err := cfg.CompareOptions()
	if err != nil {
		return nil, err
	}
	if req.Mode != "" {
		mode, err := compare.ParseMode(req.Mode)
		if err != nil {
			return nil, err
		}
		opts.Mode = mode
	}
	if req.Identity != "" {
		opts.IdentityAttribute = req.Identity
	}

	acqOpts, err := s.acquireOptions(cfg, req.Parallel, req.Timeout)
	if err != nil {
		return nil, err
	}
	acqOpts.Progress = req.Progress

	s.log.Infof("Comparing %d targets against master %s", len(cfg.Targets), cfg.MasterTarget().ID)

	snaps, err := acquire.Snapshots(ctx, cfg.Targets, s.opener(), acqOpts)
	if err != nil {
		return nil, err
	}

	result, err := compare.Compare(snaps, opts)
	if err != nil {
		return nil, fmt.Errorf("comparison failed: %w", err)
	}

	if strings.EqualFold(req.Format, report.FormatDiff) {
		err = report.RenderDiff(s.out, result, snaps)
	} else {
		err = report.Render(s.out, req.Format, result)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	summary := result.Summary()
	s.log.Infof("Compared %d tables: %d inconsistent", summary.Tables, summary.Inconsistent)
	return result, nil
}

// SaveSnapshot captures one target and stores it under name.
func (s *Service) SaveSnapshot(ctx context.Context, cfg *config.Config, targetID, name string) (snapshots.Entry, error) {
	target, ok := cfg.Target(targetID)
	if !ok {
		return snapshots.Entry{}, fmt.Errorf("unknown target: %s", targetID)
	}

	acqOpts, err := s.acquireOptions(cfg, 1, 0)
	if err != nil {
		return snapshots.Entry{}, err
	}

	snaps, err := acquire.Snapshots(ctx, []config.Target{target}, s.opener(), acqOpts)
	if err != nil {
		return snapshots.Entry{}, err
	}

	entry, err := s.store.Save(snaps[0], name)
	if err != nil {
		return snapshots.Entry{}, fmt.Errorf("failed to save snapshot: %w", err)
	}

	fmt.Fprintf(s.out, "Saved snapshot %s of %s (%d tables) to %s\n", entry.Name, entry.Target, entry.Tables, entry.Path)
	return entry, nil
}

func (s *Service) ListSnapshots() error {
	entries, err := s.store.List()
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(s.out, "No snapshots in %s\n", s.store.Directory())
		return nil
	}

	fmt.Fprintf(s.out, "Snapshots in %s:\n", s.store.Directory())
	fmt.Fprintln(s.out, strings.Repeat("=", 36))
	for i, entry := range entries {
		fmt.Fprintf(s.out, "%d. %s (Target: %s, Tables: %d, Modified: %s)\n",
			i+1,
			entry.Name,
			entry.Target,
			entry.Tables,
			displayTime(entry.Modified),
		)
	}
	fmt.Fprintf(s.out, "\nTotal snapshots: %d\n", len(entries))
	return nil
}

func (s *Service) DeleteSnapshot(name string) error {
	if err := s.store.Delete(name); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Deleted snapshot %s\n", name)
	return nil
}

// ListTargets prints the configured targets, marking the master.
func (s *Service) ListTargets(cfg *config.Config) error {
	fmt.Fprintln(s.out, "Targets:")
	fmt.Fprintln(s.out, strings.Repeat("=", 36))
	for i, target := range cfg.Targets {
		role := "peer"
		if i == 0 {
			role = "master"
		}
		fmt.Fprintf(s.out, "%d. %s [%s] %s %s\n", i+1, target.ID, role, target.Type, formatServerLabel(target))
	}
	fmt.Fprintf(s.out, "\nTotal targets: %d\n", len(cfg.Targets))
	return nil
}

func (s *Service) acquireOptions(cfg *config.Config, parallel int, timeout time.Duration) (acquire.Options, error) {
	opts := acquire.Options{
		Parallel: cfg.Compare.Parallel,
		Logger:   s.log,
	}
	if parallel > 0 {
		opts.Parallel = parallel
	}

	if timeout > 0 {
		opts.Timeout = timeout
	} else {
		configured, err := cfg.Timeout()
		if err != nil {
			return acquire.Options{}, err
		}
		opts.Timeout = configured
	}
	return opts, nil
}

func (s *Service) opener() acquire.Opener {
	return func(ctx context.Context, target config.Target) (introspect.Source, error) {
		return introspect.Open(ctx, target, s.store)
	}
}

func formatServerLabel(target config.Target) string {
	switch target.Type {
	case "sqlite":
		return displayValue(target.Path, "n/a")
	case "snapshot":
		return "snapshot " + displayValue(target.Path, "n/a")
	}

	if target.URI != "" {
		if u, err := url.Parse(target.URI); err == nil {
			return u.Host + u.Path
		}
		return "n/a"
	}

	host := displayValue(strings.TrimSpace(target.Host), "localhost")
	label := host
	if target.Port > 0 {
		label = fmt.Sprintf("%s:%d", host, target.Port)
	}
	if target.Database != "" {
		label += "/" + target.Database
	}
	return label
}

func displayValue(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func displayTime(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format("2006-01-02 15:04:05")
}
