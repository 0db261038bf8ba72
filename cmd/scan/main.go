package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/tenant-scan/internal/client/gateway"
	"github.com/bryanwahyu/tenant-scan/internal/client/locate"
	"github.com/bryanwahyu/tenant-scan/internal/client/submission"
	"github.com/bryanwahyu/tenant-scan/internal/logger"
)

// errReported marks an error already printed for the user.
var errReported = errors.New("reported")

func reported(w io.Writer, err error) error {
	fmt.Fprintln(w, err)
	return fmt.Errorf("%w: %w", errReported, err)
}

type options struct {
	gatewayURL string
	details    string
	location   string
	lat, lng   float64
	deviceFix  bool
	detect     bool
	networkURL string
	asJSON     bool
	verbose    bool
	timeout    time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "scan [photos...]",
		Short: "Send photos of a housing issue for an AI tenant-rights report",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args)
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// 0,0 is a valid fix, so presence of the flags decides
			opts.deviceFix = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.gatewayURL, "gateway", envOr("SCAN_GATEWAY_URL", gateway.DefaultBaseURL), "gateway base URL")
	f.StringVarP(&opts.location, "location", "l", "", "location, either \"lat, lng\" or free text")
	f.Float64Var(&opts.lat, "lat", 0, "device latitude")
	f.Float64Var(&opts.lng, "lng", 0, "device longitude")
	f.BoolVar(&opts.detect, "detect", false, "detect location when --location is empty")
	f.StringVar(&opts.networkURL, "network-url", locate.DefaultNetworkURL, "IP geolocation endpoint")
	f.BoolVar(&opts.asJSON, "json", false, "print the raw JSON response")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "request timeout")

	cmd.Flags().StringVarP(&opts.details, "details", "d", "", "describe the issue")

	cmd.AddCommand(newClinicsCmd(opts), newPingCmd(opts))
	return cmd
}

func runAnalyze(ctx context.Context, stdout, stderr io.Writer, opts *options, paths []string) error {
	lg := cliLogger(opts)

	urls, skipped, err := submission.LoadFiles(ctx, paths)
	if err != nil {
		return reported(stderr, err)
	}
	for _, p := range skipped {
		lg.Warn("skipping non-image file", zap.String("path", p))
	}

	location := resolveLocation(ctx, stderr, opts)

	sub, err := submission.Build(urls, opts.details, location)
	if err != nil {
		var vErr *submission.ValidationError
		switch {
		case errors.As(err, &vErr):
			for _, p := range vErr.Problems {
				fmt.Fprintln(stderr, p)
			}
		case errors.Is(err, submission.ErrUnreadableImages):
			fmt.Fprintln(stderr, submission.MsgUnreadableImages)
		default:
			fmt.Fprintln(stderr, err)
		}
		return fmt.Errorf("%w: %w", errReported, err)
	}
	lg.Debug("sending submission", zap.Int("images", len(sub.Images)), zap.String("location", sub.Location))

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	res, err := newGateway(opts).Analyze(ctx, sub)
	if err != nil {
		return reported(stderr, err)
	}
	if opts.asJSON {
		return writeJSON(stdout, res)
	}
	return renderAnalysis(stdout, res)
}

// resolveLocation prefers the --location flag, then runs the resolver over
// the device fix and --detect tiers. With neither, the resolver falls straight
// through to manual entry.
func resolveLocation(ctx context.Context, stderr io.Writer, opts *options) string {
	if opts.location != "" {
		return opts.location
	}
	tiers := make([]locate.Tier, 0, 2)
	if opts.deviceFix {
		tiers = append(tiers, locate.Device{
			Locator: locate.StaticLocator{Position: &locate.Position{Latitude: opts.lat, Longitude: opts.lng}},
		})
	}
	if opts.detect {
		tiers = append(tiers, locate.Network{URL: opts.networkURL, Client: &http.Client{Timeout: 10 * time.Second}})
	}
	res := locate.NewResolver(tiers...).Resolve(ctx)
	if res.Status != "" {
		fmt.Fprintln(stderr, res.Status)
	}
	return res.Location
}

func newGateway(opts *options) *gateway.Client {
	return gateway.New(opts.gatewayURL, &http.Client{Timeout: opts.timeout})
}

func cliLogger(opts *options) *zap.Logger {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	lg, err := logger.New(level, "console")
	if err != nil {
		return zap.NewNop()
	}
	return lg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
