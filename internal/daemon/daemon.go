package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/pkg/dateutil"
	"github.com/username/hu-holidays/pkg/random"
)

// ErrBusy is returned when a refresh is requested while one is running
var ErrBusy = errors.New("refresh already in progress")

// maxParallelYears bounds concurrent year refreshes within one run
const maxParallelYears = 4

// Refresher re-resolves a year bypassing the cache
type Refresher interface {
	Refresh(ctx context.Context, year int) (holiday.YearResult, error)
}

// Options configures the warmer
type Options struct {
	Interval      time.Duration
	JitterPercent float64
	YearsAhead    int
}

// Daemon keeps the cache warm for the current and upcoming years
type Daemon struct {
	refresher Refresher
	clock     dateutil.Clock
	opts      Options
	logger    *zap.Logger

	mu      sync.Mutex // guards running and lastRun
	running bool
	lastRun time.Time
}

// NewDaemon creates a new warmer
func NewDaemon(refresher Refresher, clock dateutil.Clock, opts Options, logger *zap.Logger) *Daemon {
	if opts.Interval <= 0 {
		opts.Interval = 12 * time.Hour
	}
	if opts.YearsAhead < 0 {
		opts.YearsAhead = 0
	}

	return &Daemon{
		refresher: refresher,
		clock:     clock,
		opts:      opts,
		logger:    logger,
	}
}

// Years returns the years a run refreshes: current through current+YearsAhead
func (d *Daemon) Years() []int {
	current := dateutil.CurrentYear(d.clock)
	years := make([]int, 0, d.opts.YearsAhead+1)
	for y := current; y <= current+d.opts.YearsAhead; y++ {
		years = append(years, y)
	}
	return years
}

// RunOnce refreshes every configured year. A failing year does not stop the
// others; the first failure is returned after all finish.
func (d *Daemon) RunOnce(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.logger.Warn("Refresh already running, skipping concurrent execution")
		return ErrBusy
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	years := d.Years()
	d.logger.Info("Refreshing holiday cache", zap.Ints("years", years))
	started := time.Now()

	var g errgroup.Group
	g.SetLimit(maxParallelYears)
	for _, year := range years {
		year := year
		g.Go(func() error {
			result, err := d.refresher.Refresh(ctx, year)
			if err != nil {
				d.logger.Error("Failed to refresh year",
					zap.Int("year", year),
					zap.Error(err))
				return errors.Wrapf(err, "refresh %d", year)
			}
			d.logger.Info("Year refreshed",
				zap.Int("year", year),
				zap.String("source", result.Source.Name),
				zap.Int("holidays", result.TotalHolidays))
			return nil
		})
	}
	err := g.Wait()

	d.mu.Lock()
	d.lastRun = d.clock.Now()
	d.mu.Unlock()

	d.logger.Info("Refresh completed",
		zap.Duration("duration", time.Since(started)),
		zap.Bool("ok", err == nil))
	return err
}

// LastRun returns when the previous run finished, zero if none has
func (d *Daemon) LastRun() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastRun
}

// Run refreshes immediately and then every Interval (± JitterPercent) until
// ctx is done or SIGINT/SIGTERM arrives.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.logger.Info("Daemon started",
		zap.Duration("refresh_interval", d.opts.Interval),
		zap.Float64("jitter_percent", d.opts.JitterPercent),
		zap.Int("years_ahead", d.opts.YearsAhead))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
		d.logger.Warn("Initial refresh incomplete", zap.Error(err))
	}

	for {
		wait := random.Jitter(d.opts.Interval, d.opts.JitterPercent)
		d.logger.Debug("Next refresh scheduled", zap.Duration("wait_duration", wait))
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info("Daemon stopped")
			return nil

		case sig := <-sigChan:
			timer.Stop()
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			return nil

		case <-timer.C:
			if err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
				d.logger.Warn("Scheduled refresh incomplete", zap.Error(err))
			}
		}
	}
}
