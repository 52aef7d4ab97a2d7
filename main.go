package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"ipsniffer/config"
	"ipsniffer/logging"
	"ipsniffer/netutil"
	"ipsniffer/output"
	"ipsniffer/scanner"
	"ipsniffer/scanner/metrics"
	"ipsniffer/telemetry"
)

const (
	exitOK      = 0
	exitUsage   = 2
	exitFailure = 4
)

// usageError marks failures caused by bad arguments; they exit with exitUsage.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	_, _ = maxprocs.Set()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "ipsniffer: %v\n", err)
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	}
	return exitFailure
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipsniffer [flags] <ip>",
		Short: "Concurrent TCP port scanner",
		Long: `ipsniffer probes every TCP port (1-65535) of one IPv4 or IPv6 address
with a fixed pool of workers and prints the ports that accept a connection
in ascending order once the scan has finished.`,
		Example: `  ipsniffer 192.168.1.1
  ipsniffer -j 1000 192.168.1.1
  ipsniffer -j 200 -t 1s -o json -f result/scan.json 10.0.0.5`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("expected exactly one target address, got %d arguments", len(args))}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return &usageError{err}
			}
			target, err := netutil.ParseTarget(args[0])
			if err != nil {
				return &usageError{err}
			}
			return scan(cmd.Context(), cfg, target, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func scan(ctx context.Context, cfg config.Config, target netip.Addr, stdout, stderr io.Writer) error {
	log := logging.New(stderr, cfg.Verbose)
	defer func() { _ = log.Sync() }()

	providers, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "ipsniffer",
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		providers.Shutdown(sctx, log)
	}()

	m, err := metrics.New(providers.Meter)
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	mgr := scanner.NewManager(scanner.Config{
		Timeout: cfg.Timeout,
		Logger:  log,
		Metrics: m,
		Tracer:  providers.Tracer.Tracer("ipsniffer/scanner"),
	})

	report, err := mgr.Start(ctx, target, cfg.Threads)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	var buf bytes.Buffer
	if err := output.Render(&buf, report, cfg.Output); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if _, err := stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if cfg.File != "" {
		if err := output.WriteAtomic(cfg.File, buf.Bytes()); err != nil {
			return fmt.Errorf("writing report file: %w", err)
		}
		log.Info("report written", zap.String("path", cfg.File))
	}
	return nil
}
