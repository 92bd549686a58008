package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-BeautyBooking/internal/config"
	"github.com/m04kA/SMC-BeautyBooking/pkg/bookingclient"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
	"github.com/m04kA/SMC-BeautyBooking/pkg/refresh"
)

const envToken = "BOOKING_TOKEN"

// options общие флаги команд
type options struct {
	configPath           string
	baseURL              string
	token                string
	providerID           int64
	date                 string
	durationMinutes      int
	conflictsInterval    time.Duration
	availabilityInterval time.Duration
	requestTimeout       time.Duration
	logLevel             string
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "availability-watch",
		Short:         "Client-side availability and conflict watcher for SMC-BeautyBooking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.toml ([watch] section is used)")
	flags.StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "booking service base URL")
	flags.StringVar(&opts.token, "token", os.Getenv(envToken), "bearer token (defaults to $"+envToken+")")
	flags.Int64Var(&opts.providerID, "provider", 0, "provider ID")
	flags.StringVar(&opts.date, "date", "", "date YYYY-MM-DD")
	flags.IntVar(&opts.durationMinutes, "duration", 0, "duration in minutes (0 = provider default)")
	flags.DurationVar(&opts.conflictsInterval, "conflicts-interval", refresh.DefaultConflictsInterval, "conflicts refresh interval")
	flags.DurationVar(&opts.availabilityInterval, "availability-interval", refresh.DefaultAvailabilityInterval, "availability refresh interval")
	flags.DurationVar(&opts.requestTimeout, "timeout", refresh.DefaultRequestTimeout, "per-request timeout")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	_ = rootCmd.MarkPersistentFlagRequired("provider")
	_ = rootCmd.MarkPersistentFlagRequired("date")

	rootCmd.AddCommand(watchCmd(opts))
	rootCmd.AddCommand(bookCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func watchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll availability and conflicts for a provider/date until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyConfig(cmd); err != nil {
				return err
			}
			log, err := logger.New("", opts.logLevel)
			if err != nil {
				return err
			}
			defer log.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			view, err := opts.view()
			if err != nil {
				return err
			}

			cache := refresh.NewSnapshotCache()
			out := cmd.OutOrStdout()

			scheduler, err := refresh.NewScheduler(opts.client(), cache, view, log,
				refresh.WithConflictsInterval(opts.conflictsInterval),
				refresh.WithAvailabilityInterval(opts.availabilityInterval),
				refresh.WithRequestTimeout(opts.requestTimeout),
				refresh.WithOnUpdate(func(kind refresh.Kind) {
					printSnapshot(out, cache, kind)
				}),
			)
			if err != nil {
				return err
			}

			handle := scheduler.Start(ctx)
			<-ctx.Done()
			handle.Stop()
			return nil
		},
	}
}

func bookCmd(opts *options) *cobra.Command {
	var (
		serviceID int64
		startTime string
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Create a booking; on conflict print the refreshed conflict map",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyConfig(cmd); err != nil {
				return err
			}
			if opts.durationMinutes <= 0 {
				return fmt.Errorf("--duration is required for booking")
			}

			view, err := opts.view()
			if err != nil {
				return err
			}

			client := opts.client()
			out := cmd.OutOrStdout()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.requestTimeout)
			defer cancel()

			booking, err := client.CreateBooking(ctx, &bookingclient.CreateBookingRequest{
				ProviderID:      opts.providerID,
				ServiceID:       serviceID,
				BookingDate:     opts.date,
				StartTime:       startTime,
				DurationMinutes: opts.durationMinutes,
			})
			if err == nil {
				fmt.Fprintf(out, "booked #%d %s %s-%s (%s)\n",
					booking.ID, booking.BookingDate, booking.StartTime, booking.EndTime, booking.Status)
				return nil
			}

			if unauthenticated, ok := bookingclient.IsUnauthenticated(err); ok {
				printPendingBooking(out, unauthenticated.Request)
				return err
			}

			conflict, ok := bookingclient.IsConflict(err)
			if !ok {
				return err
			}

			// Слот занят: повторять тот же слот бессмысленно, показываем свежую карту
			fmt.Fprintf(out, "slot %s is not available: %s\n", startTime, conflict.Reason)

			conflicts, err := client.GetConflicts(ctx, view.ProviderID, view.Date, view.DurationMinutes)
			if err != nil {
				return fmt.Errorf("refresh conflicts: %w", err)
			}
			printConflicts(out, conflicts)
			return conflict
		},
	}

	cmd.Flags().Int64Var(&serviceID, "service", 0, "service ID")
	cmd.Flags().StringVar(&startTime, "time", "", "start time HH:MM")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

// applyConfig берет значения из [watch], если флаг не задан явно
func (o *options) applyConfig(cmd *cobra.Command) error {
	if o.configPath == "" {
		return nil
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("base-url") {
		o.baseURL = cfg.Watch.BaseURL
	}
	if !flags.Changed("conflicts-interval") {
		o.conflictsInterval = time.Duration(cfg.Watch.ConflictsIntervalSeconds) * time.Second
	}
	if !flags.Changed("availability-interval") {
		o.availabilityInterval = time.Duration(cfg.Watch.AvailabilityIntervalSeconds) * time.Second
	}
	if !flags.Changed("timeout") {
		o.requestTimeout = time.Duration(cfg.Watch.RequestTimeoutSeconds) * time.Second
	}
	return nil
}

func (o *options) view() (refresh.View, error) {
	date, err := time.Parse(time.DateOnly, o.date)
	if err != nil {
		return refresh.View{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", o.date)
	}
	return refresh.View{ProviderID: o.providerID, Date: date, DurationMinutes: o.durationMinutes}, nil
}

func (o *options) client() *bookingclient.Client {
	return bookingclient.NewClient(strings.TrimRight(o.baseURL, "/"), o.requestTimeout, bookingclient.WithToken(o.token))
}

func printSnapshot(out io.Writer, cache *refresh.SnapshotCache, kind refresh.Kind) {
	switch kind {
	case refresh.KindAvailability:
		snapshot, ok := cache.Availability()
		if !ok {
			return
		}
		a := snapshot.Value
		if a.Blocked {
			fmt.Fprintf(out, "[%s] availability %s: blocked\n", snapshot.ReceivedAt.Format(time.TimeOnly), a.Date)
			return
		}
		starts := make([]string, len(a.Slots))
		for i, s := range a.Slots {
			starts[i] = s.StartTime
		}
		fmt.Fprintf(out, "[%s] availability %s (%dm): %s\n",
			snapshot.ReceivedAt.Format(time.TimeOnly), a.Date, a.DurationMinutes, strings.Join(starts, " "))

	case refresh.KindConflicts:
		snapshot, ok := cache.Conflicts()
		if !ok {
			return
		}
		fmt.Fprintf(out, "[%s] ", snapshot.ReceivedAt.Format(time.TimeOnly))
		printConflicts(out, snapshot.Value)
	}
}

// printPendingBooking печатает неотправленное бронирование и команду для повтора после входа
func printPendingBooking(out io.Writer, req *bookingclient.CreateBookingRequest) {
	fmt.Fprintf(out, "not authenticated, booking was not sent: provider=%d service=%d %s %s (%dm)\n",
		req.ProviderID, req.ServiceID, req.BookingDate, req.StartTime, req.DurationMinutes)
	fmt.Fprintf(out, "set a fresh token in $%s and retry:\n", envToken)
	fmt.Fprintf(out, "  availability-watch book --provider %d --date %s --duration %d --service %d --time %s\n",
		req.ProviderID, req.BookingDate, req.DurationMinutes, req.ServiceID, req.StartTime)
}

func printConflicts(out io.Writer, c *bookingclient.Conflicts) {
	fmt.Fprintf(out, "conflicts %s: %d/%d available\n", c.Date, c.AvailableCount(), len(c.Slots))
	for _, s := range c.Slots {
		if s.Available {
			continue
		}
		reason := "unavailable"
		if s.Reason != nil {
			reason = *s.Reason
		}
		fmt.Fprintf(out, "  %s-%s %s\n", s.StartTime, s.EndTime, reason)
	}
}
