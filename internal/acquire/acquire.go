// Package acquire captures one schema snapshot per configured target.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kadirbelkuyu/schemer/internal/config"
	"github.com/kadirbelkuyu/schemer/internal/introspect"
	"github.com/kadirbelkuyu/schemer/internal/schema"
	"github.com/kadirbelkuyu/schemer/pkg/logger"
	"github.com/kadirbelkuyu/schemer/pkg/progress"
)

// Opener connects to a target and returns its introspection source.
type Opener func(ctx context.Context, target config.Target) (introspect.Source, error)

type Options struct {
	// Parallel is the number of targets acquired at once; values below 2
	// acquire strictly in configured order.
	Parallel int
	// Timeout bounds each target's acquisition when positive.
	Timeout time.Duration
	Logger  *logger.Logger
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// AcquisitionError names the target, and the table when known, whose
// introspection failed.
type AcquisitionError struct {
	Target string
	Table  string
	Err    error
}

func (e *AcquisitionError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("failed to acquire schema of %s (table %s): %v", e.Target, e.Table, e.Err)
	}
	return fmt.Sprintf("failed to acquire schema of %s: %v", e.Target, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Snapshots returns one snapshot per target in the order given. The first
// failure aborts the run and no partial result is returned.
func Snapshots(ctx context.Context, targets []config.Target, open Opener, opts Options) ([]*schema.Snapshot, error) {
	if open == nil {
		return nil, fmt.Errorf("opener cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	var bar *progress.Bar
	if opts.Progress != nil {
		bar = progress.NewBar(int64(len(targets)), "Acquiring schemas", opts.Progress)
	}

	out := make([]*schema.Snapshot, len(targets))

	if opts.Parallel <= 1 {
		for i, target := range targets {
			snap, err := acquireOne(ctx, target, open, opts)
			if err != nil {
				return nil, err
			}
			out[i] = snap
			bar.Increment()
		}
		bar.Finish()
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			snap, err := acquireOne(gctx, target, open, opts)
			if err != nil {
				return err
			}
			out[i] = snap
			bar.Increment()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	bar.Finish()
	return out, nil
}

func acquireOne(ctx context.Context, target config.Target, open Opener, opts Options) (*schema.Snapshot, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	log := opts.Logger.ForTarget(target.ID)
	started := time.Now()
	log.Infof("Acquiring schema (%s)", target.Type)

	src, err := open(ctx, target)
	if err != nil {
		return nil, &AcquisitionError{Target: target.ID, Err: err}
	}
	defer src.Close()

	snap, err := introspect.Capture(ctx, target.ID, &loggingSource{Source: src, log: log})
	if err != nil {
		var fetchErr *schema.FetchError
		if errors.As(err, &fetchErr) {
			return nil, &AcquisitionError{Target: target.ID, Table: fetchErr.Table, Err: fetchErr.Err}
		}
		return nil, &AcquisitionError{Target: target.ID, Err: err}
	}

	log.WithFields(logrus.Fields{
		"tables":   snap.Tables().Len(),
		"duration": time.Since(started).Round(time.Millisecond),
	}).Info("Schema acquired")
	return snap, nil
}

type loggingSource struct {
	introspect.Source
	log *logrus.Entry
}

func (s *loggingSource) DescribeTable(ctx context.Context, table string) ([]schema.ColumnDescriptor, error) {
	s.log.Debugf("Describing table %s", table)
	return s.Source.DescribeTable(ctx, table)
}
