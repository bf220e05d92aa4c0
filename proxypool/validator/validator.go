package validator

import (
	"context"
	"errors"
	"fmt"
	"liuproxy_scanner/internal/shared/logger"
	"liuproxy_scanner/proxypool/model"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultConcurrency = 75
	defaultTimeout     = 5 * time.Second
)

// ErrNoBaseline means the direct probe succeeded but carried no usable client IP.
var ErrNoBaseline = errors.New("no client IP in baseline response")

// Options configures a Validator.
type Options struct {
	Host           string
	Path           string
	Concurrency    int
	Timeout        time.Duration
	DialsPerSecond int // 0 disables pacing
	Policy         Policy
}

// Report summarises one Validate run. Alive+Dead+Failed == Total.
type Report struct {
	Entries []model.AliveEntry
	Total   int
	Alive   int
	Dead    int
	Failed  int
}

type Validator struct {
	prober      Prober
	policy      Policy
	guard       Guard
	host        string
	path        string
	concurrency int
	limiter     *rate.Limiter
	bar         *pb.ProgressBar
	log         zerolog.Logger
}

func NewValidator(prober Prober, opts Options) *Validator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	v := &Validator{
		prober:      prober,
		policy:      opts.Policy,
		guard:       Guard{Timeout: opts.Timeout},
		host:        opts.Host,
		path:        opts.Path,
		concurrency: opts.Concurrency,
		log:         logger.WithComponent("ProxyPool/Validator"),
	}
	if opts.DialsPerSecond > 0 {
		v.limiter = rate.NewLimiter(rate.Limit(opts.DialsPerSecond), opts.DialsPerSecond)
	}
	return v
}

// SetProgress attaches a progress bar incremented once per dispositioned proxy.
func (v *Validator) SetProgress(bar *pb.ProgressBar) {
	v.bar = bar
}

// SetLogger replaces the component logger, e.g. to add a run id.
func (v *Validator) SetLogger(l zerolog.Logger) {
	v.log = l
}

// Baseline probes the endpoint without a proxy and returns the caller's own IP.
// It must complete before Validate is called.
func (v *Validator) Baseline(ctx context.Context) (string, error) {
	payload, err := v.guard.Run(ctx, func(ctx context.Context) (Payload, error) {
		return v.prober.Probe(ctx, v.host, v.path, nil)
	})
	if err != nil {
		return "", fmt.Errorf("baseline probe: %w", err)
	}
	ip := v.policy.ClientIP(payload)
	if ip == "" {
		return "", ErrNoBaseline
	}
	v.log.Info().Str("original_ip", ip).Msg("Baseline identity resolved.")
	return ip, nil
}

// Validate probes every record with at most v.concurrency probes in flight
// and returns once each record has a verdict. A failing proxy never affects
// the others.
func (v *Validator) Validate(ctx context.Context, baseline string, records []model.ProxyRecord) *Report {
	report := &Report{Total: len(records)}
	if len(records) == 0 {
		return report
	}

	v.log.Info().Int("count", len(records)).Int("concurrency", v.concurrency).Msg("Starting validation batch...")

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	semaphore := make(chan struct{}, v.concurrency)

	for _, rec := range records {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(rec model.ProxyRecord) {
			defer wg.Done()
			defer func() { <-semaphore }()

			verdict := v.validateSingleProxy(ctx, baseline, rec)

			mu.Lock()
			switch verdict.Status {
			case StatusAlive:
				report.Alive++
				report.Entries = append(report.Entries, *verdict.Entry)
			case StatusDead:
				report.Dead++
			default:
				report.Failed++
			}
			mu.Unlock()

			if v.bar != nil {
				v.bar.Increment()
			}
		}(rec)
	}

	wg.Wait()

	v.log.Info().
		Int("total", report.Total).
		Int("alive", report.Alive).
		Int("dead", report.Dead).
		Int("failed", report.Failed).
		Msg("Validation batch finished.")
	return report
}

func (v *Validator) validateSingleProxy(ctx context.Context, baseline string, rec model.ProxyRecord) Verdict {
	startTime := time.Now()
	via := &Endpoint{Address: rec.Address, Port: rec.Port}

	var (
		payload Payload
		err     error
	)
	if v.limiter != nil {
		err = v.limiter.Wait(ctx)
	}
	if err == nil {
		payload, err = v.guard.Run(ctx, func(ctx context.Context) (Payload, error) {
			return v.prober.Probe(ctx, v.host, v.path, via)
		})
	}

	verdict := v.policy.Evaluate(baseline, payload, err, rec)

	switch verdict.Status {
	case StatusAlive:
		v.log.Info().
			Str("proxy", via.String()).
			Str("entry", verdict.Entry.String()).
			Dur("latency", time.Since(startTime)).
			Msg("Proxy alive.")
	case StatusDead:
		v.log.Info().Str("proxy", via.String()).Str("reason", verdict.Reason).Msg("Proxy dead.")
	default:
		v.log.Warn().Str("proxy", via.String()).Str("kind", failureKind(err)).Err(err).Msg("Proxy check failed.")
	}
	return verdict
}
