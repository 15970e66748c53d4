package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm/hxwrap/lib/async"
)

// EnvPrefix scopes the async.Config environment variables read by watch,
// e.g. HXWRAP_REFETCH_ON_INTERVAL=5s.
const EnvPrefix = "HXWRAP_"

type watchOptions struct {
	interval   time.Duration
	retry      bool
	retries    int
	count      int
	timeout    time.Duration
	probe      string
	probeEvery time.Duration
}

// Response is what a watched fetch resolves to.
type Response struct {
	Fetch   uint64 // 1-based fetch number
	Status  int
	Bytes   int64
	Elapsed time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <url>",
		Short: "Fetch a URL through an async orchestrator and print each result",
		Long: `Fetch a URL through an async orchestrator and print every settled state.

Defaults come from HXWRAP_* environment variables (see async.Config);
flags override them. With --probe, the orchestrator refetches whenever
the given TCP address becomes reachable again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", 0, "refetch interval (0 disables)")
	cmd.Flags().BoolVar(&opts.retry, "retry", false, "retry failed fetches")
	cmd.Flags().IntVar(&opts.retries, "retries", 3, "retry limit per fetch")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "stop after n results (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "stop after this long (0 disables)")
	cmd.Flags().StringVar(&opts.probe, "probe", "", "host:port to probe for reconnects")
	cmd.Flags().DurationVar(&opts.probeEvery, "probe-every", 5*time.Second, "probe poll interval")

	return cmd
}

func runWatch(cmd *cobra.Command, rootOpts *RootOptions, opts *watchOptions, target string) error {
	cfg, err := async.ConfigFromEnv(EnvPrefix)
	if err != nil {
		return WrapExitError(ExitCommandError, "config", err)
	}
	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.RefetchOnInterval = opts.interval
	}
	if flags.Changed("retry") {
		cfg.RetryOnError = opts.retry
	}
	if flags.Changed("retries") {
		cfg.Retries = opts.retries
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	log := rootOpts.logger(cmd.ErrOrStderr())
	aopts := async.Options[string]{Config: cfg, Logger: log}
	if opts.probe != "" {
		probe := async.NewProbe(async.DialCheck("tcp", opts.probe, time.Second), opts.probeEvery)
		go probe.Run(ctx)
		aopts.Reconnect = probe
	}

	o := async.Mount(ctx, fetchURL(http.DefaultClient, new(atomic.Uint64)), target, &aopts)
	defer o.Close()
	log.Info("watch started", "url", target, "orchestrator", o.ID(), "interval", cfg.RefetchOnInterval)

	settled := make(chan async.State[Response], 16)
	unsubscribe := o.Subscribe(func() {
		if s := o.Snapshot(); s.Settled() {
			select {
			case settled <- s:
			default:
				log.Warn("output behind, dropping result")
			}
		}
	})
	defer unsubscribe()

	// The first fetch may settle before Subscribe.
	if s := o.Snapshot(); s.Settled() {
		settled <- s
	}

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	var last async.State[Response]
	for n := 1; opts.count == 0 || n <= opts.count; {
		select {
		case <-ctx.Done():
			return nil
		case s := <-settled:
			if n > 1 && sameResult(s, last) {
				continue
			}
			last = s
			if err := out.Observe(observe(n, target, s)); err != nil {
				return err
			}
			n++
		}
	}

	if last.HasError {
		return WrapExitError(ExitFailure, "last fetch failed", last.Err)
	}
	return nil
}

// sameResult reports whether a and b describe the same settlement. The
// first fetch can be delivered twice, once by Subscribe and once by the
// initial snapshot check.
func sameResult(a, b async.State[Response]) bool {
	return a.HasError == b.HasError && settledFetch(a) == settledFetch(b)
}

// settledFetch is the number of the fetch that produced s.
func settledFetch(s async.State[Response]) uint64 {
	if !s.HasError {
		return s.Data.Fetch
	}
	var fe *FetchError
	if errors.As(s.Err, &fe) {
		return fe.Fetch
	}
	return 0
}

func observe(seq int, target string, s async.State[Response]) Observation {
	o := Observation{Seq: seq, URL: target, Retries: s.Retries}
	if s.HasError {
		o.Error = s.Err.Error()
		o.Stale = s.HasData
		return o
	}
	o.OK = true
	o.Status = s.Data.Status
	o.Bytes = s.Data.Bytes
	o.Elapsed = s.Data.Elapsed
	return o
}

// FetchError is a failed fetch, tagged with its fetch number.
type FetchError struct {
	Fetch uint64
	Err   error
}

func (e *FetchError) Error() string { return e.Err.Error() }

func (e *FetchError) Unwrap() error { return e.Err }

// fetchURL issues a GET per fetch. Non-2xx statuses are errors.
func fetchURL(client *http.Client, fetches *atomic.Uint64) async.FetchFunc[string, Response] {
	return func(ctx context.Context, target string) (Response, error) {
		fetch := fetches.Add(1)
		resp, err := get(ctx, client, target)
		if err != nil {
			return Response{}, &FetchError{Fetch: fetch, Err: err}
		}
		resp.Fetch = fetch
		return resp, nil
	}
}

func get(ctx context.Context, client *http.Client, target string) (Response, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return Response{Status: resp.StatusCode, Bytes: n, Elapsed: time.Since(start)}, nil
}
