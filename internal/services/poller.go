package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"route-divergence-service/internal/divergence"
	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/platform/obs"
	"route-divergence-service/internal/ports"
)

// Poller fetches every provider for every route and stores one PollRecord per
// route per cycle.
type Poller struct {
	providers       []ports.RouteProvider
	reference       string
	sink            ports.RecordSink
	notifier        ports.DivergenceNotifier
	divergence      divergence.Config
	providerTimeout time.Duration

	now   func() time.Time
	newID func() string
}

type PollerConfig struct {
	// Reference names the provider others are compared against.
	// Empty selects the first provider.
	Reference       string
	Divergence      divergence.Config
	ProviderTimeout time.Duration
}

func NewPoller(
	providers []ports.RouteProvider,
	sink ports.RecordSink,
	notifier ports.DivergenceNotifier,
	cfg PollerConfig,
) (*Poller, error) {
	if len(providers) == 0 {
		return nil, errors.New("new poller: at least one provider is required")
	}
	if sink == nil {
		return nil, errors.New("new poller: record sink is nil")
	}

	seen := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		if _, ok := seen[p.Name()]; ok {
			return nil, fmt.Errorf("new poller: duplicate provider %q", p.Name())
		}
		seen[p.Name()] = struct{}{}
	}

	ref := cfg.Reference
	if ref == "" {
		ref = providers[0].Name()
	}
	if _, ok := seen[ref]; !ok {
		return nil, fmt.Errorf("new poller: reference provider %q is not configured", ref)
	}

	return &Poller{
		providers:       providers,
		reference:       ref,
		sink:            sink,
		notifier:        notifier,
		divergence:      cfg.Divergence,
		providerTimeout: cfg.ProviderTimeout,
		now:             time.Now,
		newID:           uuid.NewString,
	}, nil
}

// Reference returns the name of the reference provider.
func (p *Poller) Reference() string { return p.reference }

// ProviderNames returns the configured providers in order.
func (p *Poller) ProviderNames() []string {
	names := make([]string, 0, len(p.providers))
	for _, prov := range p.providers {
		names = append(names, prov.Name())
	}
	return names
}

// Run polls immediately and then once per interval until ctx is done.
// Cycle errors are logged; the next tick retries.
func (p *Poller) Run(ctx context.Context, routes []domain.RouteConfig, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	log.Info().
		Int("routes", len(routes)).
		Strs("providers", p.ProviderNames()).
		Str("reference", p.reference).
		Dur("interval", interval).
		Msg("poller started")

	p.runCycle(ctx, routes)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			p.runCycle(ctx, routes)
		}
	}
}

func (p *Poller) runCycle(ctx context.Context, routes []domain.RouteConfig) {
	if err := p.PollOnce(ctx, routes); err != nil {
		log.Error().Err(err).Msg("poll cycle finished with errors")
	}
}

// PollOnce polls each route in order. Provider failures are recorded in the
// route's PollRecord; only sink failures are returned, joined across routes.
func (p *Poller) PollOnce(ctx context.Context, routes []domain.RouteConfig) error {
	var errs []error
	for _, route := range routes {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := p.PollRoute(ctx, route); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PollRoute runs one cycle for a single route and appends the resulting record.
func (p *Poller) PollRoute(ctx context.Context, route domain.RouteConfig) (_ domain.PollRecord, err error) {
	ctx = obs.WithRouteID(ctx, route.ID)
	defer obs.Time(ctx, "poller.PollRoute")(&err)

	results := p.fetchAll(ctx, route)
	p.annotateDivergence(results)

	record := domain.PollRecord{
		ID:        p.newID(),
		Timestamp: p.now().UnixMilli(),
		RouteID:   route.ID,
		Results:   results,
	}

	p.logSummary(route, record)

	if err := p.sink.Append(ctx, route.ID, record); err != nil {
		return record, fmt.Errorf("poll route %q: append record: %w", route.ID, err)
	}

	p.notifyDivergences(ctx, record)

	return record, nil
}

// fetchAll queries every provider concurrently and waits for all of them.
// results[i] always belongs to p.providers[i].
func (p *Poller) fetchAll(ctx context.Context, route domain.RouteConfig) []domain.ProviderResult {
	results := make([]domain.ProviderResult, len(p.providers))

	var wg sync.WaitGroup
	for i, prov := range p.providers {
		wg.Add(1)
		go func(i int, prov ports.RouteProvider) {
			defer wg.Done()
			results[i] = p.fetchOne(ctx, route, prov)
		}(i, prov)
	}
	wg.Wait()

	return results
}

func (p *Poller) fetchOne(ctx context.Context, route domain.RouteConfig, prov ports.RouteProvider) (res domain.ProviderResult) {
	name := prov.Name()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("provider", name).Interface("panic", r).Msg("provider fetch panicked")
			res = domain.Failed(name, fmt.Sprintf("panic: %v", r))
		}
	}()

	if p.providerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.providerTimeout)
		defer cancel()
	}

	est, err := prov.Fetch(ctx, route)
	if err != nil {
		log.Debug().Err(err).Str("route_id", route.ID).Str("provider", name).Msg("provider fetch failed")
		return domain.Failed(name, err.Error())
	}
	return domain.Succeeded(name, est)
}

// annotateDivergence compares every successful non-reference path against
// the reference path. Nothing is compared when the reference has no path.
func (p *Poller) annotateDivergence(results []domain.ProviderResult) {
	refPolyline := ""
	for _, r := range results {
		if r.Provider == p.reference {
			refPolyline = r.Polyline()
			break
		}
	}
	if refPolyline == "" {
		return
	}

	for i := range results {
		r := &results[i]
		if r.Provider == p.reference || r.Polyline() == "" {
			continue
		}

		report := divergence.Compare(refPolyline, r.Polyline(), p.divergence)
		if report == nil {
			continue
		}
		report.ComparedTo = p.reference
		r.Divergence = report
	}
}

func (p *Poller) notifyDivergences(ctx context.Context, record domain.PollRecord) {
	for _, r := range record.Results {
		if r.Divergence == nil || !r.Divergence.IsDifferentRoute {
			continue
		}

		log.Warn().
			Str("route_id", record.RouteID).
			Str("provider", r.Provider).
			Str("compared_to", r.Divergence.ComparedTo).
			Int("avg_m", r.Divergence.AvgDeviationMeters).
			Int("max_m", r.Divergence.MaxDeviationMeters).
			Msg("route divergence detected")

		if p.notifier == nil {
			continue
		}

		alert := ports.DivergenceAlert{
			RecordID:           record.ID,
			RouteID:            record.RouteID,
			Provider:           r.Provider,
			ComparedTo:         r.Divergence.ComparedTo,
			AvgDeviationMeters: r.Divergence.AvgDeviationMeters,
			MaxDeviationMeters: r.Divergence.MaxDeviationMeters,
			Timestamp:          record.Timestamp,
		}
		if err := p.notifier.Notify(ctx, alert); err != nil {
			log.Error().Err(err).Str("route_id", record.RouteID).Str("provider", r.Provider).Msg("divergence alert not delivered")
		}
	}
}

func (p *Poller) logSummary(route domain.RouteConfig, record domain.PollRecord) {
	ev := log.Info().Str("route_id", route.ID).Str("label", route.Label)
	for _, r := range record.Results {
		if r.OK() {
			ev = ev.Str(r.Provider, strconv.Itoa(r.Estimate.DurationSeconds)+"s")
		} else {
			ev = ev.Str(r.Provider, "ERR")
		}
	}
	ev.Msg("poll complete")
}
