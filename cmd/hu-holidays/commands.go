package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/hu-holidays/internal/api"
	"github.com/username/hu-holidays/internal/daemon"
	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/internal/sources"
	"github.com/username/hu-holidays/pkg/dateutil"
)

const shutdownTimeout = 10 * time.Second

// withApp builds the stack, runs fn with a signal-aware context and closes the stack
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// yearArg parses an optional year argument, defaulting to the current year
func yearArg(args []string, clock dateutil.Clock) (int, error) {
	if len(args) == 0 {
		return dateutil.CurrentYear(clock), nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, errors.Newf("invalid year %q", args[0])
	}
	if year < api.MinYear || year > api.MaxYear {
		return 0, errors.Newf("year must be between %d and %d", api.MinYear, api.MaxYear)
	}
	return year, nil
}

func serveCmd() *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				handler := api.NewServer(a.resolver, logger,
					api.WithClock(a.clock),
					api.WithMetrics(a.metrics),
					api.WithMiddlewares(api.LoggingMiddleware(logger)))

				srv := &http.Server{
					Addr:         cfg.Server.Addr,
					Handler:      handler,
					ReadTimeout:  cfg.Server.GetReadTimeout(),
					WriteTimeout: cfg.Server.GetWriteTimeout(),
				}

				g, ctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return errors.Wrap(err, "http server")
					}
					return nil
				})
				g.Go(func() error {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					logger.Info("Shutting down HTTP server")
					return srv.Shutdown(shutdownCtx)
				})
				if warm {
					warmer := daemon.NewDaemon(a.resolver, a.clock, daemonOptions(), logger)
					g.Go(func() error { return warmer.Run(ctx) })
				}

				return g.Wait()
			})
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", true, "Keep the cache warm in the background")
	return cmd
}

func daemonOptions() daemon.Options {
	return daemon.Options{
		Interval:      cfg.Daemon.GetRefreshInterval(),
		JitterPercent: cfg.Daemon.JitterPercent,
		YearsAhead:    cfg.Daemon.YearsAhead,
	}
}

func holidaysCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "holidays [year]",
		Short: "List holidays and weekend workdays of a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				year, err := yearArg(args, a.clock)
				if err != nil {
					return err
				}

				resolve := a.resolver.Resolve
				if refresh {
					resolve = a.resolver.Refresh
				}
				result, err := resolve(ctx, year)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), outputFormat, result)
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached entry and fetch again")
	return cmd
}

func workdaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workdays [year]",
		Short: "List weekend days redesignated as working days",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				year, err := yearArg(args, a.clock)
				if err != nil {
					return err
				}
				workdays, err := a.resolver.WeekendWorkdays(ctx, year)
				if err != nil {
					return err
				}
				return printWorkdays(cmd.OutOrStdout(), outputFormat, workdays)
			})
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <date>",
		Short: "Tell whether a date is a holiday, a weekend workday or a working day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := dateutil.ParseDate(args[0])
			if err != nil {
				return errors.WithHint(err, "Use the YYYY-MM-DD format, e.g. 2025-03-15.")
			}
			d := holiday.DateOf(t)
			return withApp(func(ctx context.Context, a *app) error {
				status, err := a.resolver.Check(ctx, d)
				if err != nil {
					return err
				}
				return printStatus(cmd.OutOrStdout(), outputFormat, status)
			})
		},
	}
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources [year]",
		Short: "Show the ranked sources and which ones a year would use",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(_ context.Context, a *app) error {
				year, err := yearArg(args, a.clock)
				if err != nil {
					return err
				}
				return printChoices(cmd.OutOrStdout(), outputFormat, year, sources.Explain(year, a.registry))
			})
		},
	}
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Administer the holiday cache",
	}

	var year int
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached entries (all years, or one with --year)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if year != 0 {
					if err := a.resolver.Invalidate(ctx, year); err != nil {
						return err
					}
					pterm.Success.Printfln("Cache entry for %d invalidated", year)
					return nil
				}
				if err := a.resolver.InvalidateAll(ctx); err != nil {
					return err
				}
				pterm.Success.Println("Cache cleared successfully")
				return nil
			})
		},
	}
	clearCmd.Flags().IntVar(&year, "year", 0, "Only invalidate this year")

	cmd.AddCommand(clearCmd)
	return cmd
}

func warmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Refresh the cache for the current and upcoming years once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				warmer := daemon.NewDaemon(a.resolver, a.clock, daemonOptions(), logger)
				if err := warmer.RunOnce(ctx); err != nil {
					return err
				}
				pterm.Success.Printfln("Cache warmed for %v", warmer.Years())
				return nil
			})
		},
	}
}
