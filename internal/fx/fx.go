// internal/fx/fx.go
package fx

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	m "github.com/example/tour-booking-gateway/pkg/metrics"
)

// Source tells the UI whether a quote came from the live provider or the
// static fallback table.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Quote is an immutable exchange-rate snapshot: billing-currency units per
// one base-currency unit.
type Quote struct {
	Base      string        `json:"base"`
	Billing   string        `json:"billing"`
	Rate      float64       `json:"rate"`
	FetchedAt time.Time     `json:"fetched_at"`
	Source    Source        `json:"source"`
	TTL       time.Duration `json:"-"`
}

// Expired reports whether the quote's validity window has elapsed.
func (q Quote) Expired(now time.Time) bool {
	if q.TTL <= 0 {
		return q.Source == SourceLive
	}
	return now.After(q.FetchedAt.Add(q.TTL))
}

// MaterialChange reports whether a refreshed quote differs enough from the
// previous one that the UI should re-render the displayed total: the source
// flipped or the rate moved.
func MaterialChange(prev, next Quote) bool {
	return prev.Source != next.Source || prev.Rate != next.Rate
}

// Conversion is the result of converting a base-currency amount into the
// billing currency, with a display note naming the rate and its source.
type Conversion struct {
	AmountMinor int64  `json:"amount_minor"`
	Note        string `json:"note"`
}

// Static last-resort rates, billing units per base unit.
var fallbackRates = map[string]float64{
	"USD/GHS": 15.50,
	"USD/NGN": 1580.0,
	"USD/KES": 129.0,
	"EUR/GHS": 16.80,
	"GBP/GHS": 19.60,
}

// Service owns the process-wide quote cache. Reads never perform I/O;
// the cache is written only by a successful Refresh, last writer wins.
type Service struct {
	base    string
	billing string
	provider Provider
	ttl     time.Duration
	now     func() time.Time

	mu     sync.Mutex
	cached *Quote // live quotes only
}

// New builds a Service. now may be nil (wall clock); tests inject their own.
func New(base, billing string, provider Provider, ttl time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		base:     base,
		billing:  billing,
		provider: provider,
		ttl:      ttl,
		now:      now,
	}
}

// CachedQuote returns a synchronously available quote: the cached live quote
// if still inside its TTL, otherwise the static fallback table. When the pair
// has no table entry, a stale live quote is still served as a last resort.
// Never fails, never touches the network.
func (s *Service) CachedQuote() Quote {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()

	now := s.now()
	if cached != nil && !cached.Expired(now) {
		return *cached
	}

	if rate, ok := fallbackRates[s.base+"/"+s.billing]; ok {
		return Quote{
			Base:      s.base,
			Billing:   s.billing,
			Rate:      rate,
			FetchedAt: now,
			Source:    SourceFallback,
			TTL:       0,
		}
	}

	if cached != nil {
		stale := *cached
		stale.Source = SourceFallback
		return stale
	}

	// no live quote ever fetched and no table entry: identity rate so the
	// UI still renders something
	return Quote{Base: s.base, Billing: s.billing, Rate: 1, FetchedAt: now, Source: SourceFallback}
}

// Refresh fetches a live rate and replaces the cache on success. On any
// failure the cache is left untouched and the current CachedQuote is
// returned instead. This call never returns an error.
func (s *Service) Refresh(ctx context.Context) Quote {
	rate, err := s.provider.FetchRate(ctx, s.base, s.billing)
	if err != nil || rate <= 0 {
		if err != nil {
			log.Printf("[fx] refresh failed, serving cached/fallback: %v", err)
		}
		q := s.CachedQuote()
		m.IncFxRefresh(string(q.Source))
		return q
	}

	q := Quote{
		Base:      s.base,
		Billing:   s.billing,
		Rate:      rate,
		FetchedAt: s.now(),
		Source:    SourceLive,
		TTL:       s.ttl,
	}

	s.mu.Lock()
	s.cached = &q
	s.mu.Unlock()

	m.IncFxRefresh(string(SourceLive))
	return q
}

// Convert turns a base-currency amount in minor units into billing-currency
// minor units. Pure arithmetic, round half up.
func Convert(amountMinor int64, q Quote) Conversion {
	converted := int64(math.Floor(float64(amountMinor)*q.Rate + 0.5))
	note := fmt.Sprintf("converted at %.4f %s/%s (%s rate)", q.Rate, q.Base, q.Billing, q.Source)
	return Conversion{AmountMinor: converted, Note: note}
}
