package underwriting

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

const defaultLimit = 5

// Filters are hard filters applied before scoring. Zero values disable a filter.
type Filters struct {
	MinPrice float64 `json:"min_price" validate:"gte=0"`
	MaxPrice float64 `json:"max_price" validate:"gte=0"`
	MinBeds  int     `json:"min_beds" validate:"gte=0"`
	MinScore int     `json:"min_score" validate:"gte=0,lte=100"`
}

// Engine ranks batches of properties. Scoring itself is pure; the engine only
// fans the work out and orders the results.
type Engine struct {
	defaults domain.InvestmentAssumptions
	workers  int
	log      zerolog.Logger
}

func NewEngine(defaults domain.InvestmentAssumptions, workers int, log zerolog.Logger) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		defaults: defaults,
		workers:  workers,
		log:      log.With().Str("component", "underwriting").Logger(),
	}
}

// DefaultAssumptions returns the engine's configured fallback assumptions.
func (e *Engine) DefaultAssumptions() domain.InvestmentAssumptions {
	return e.defaults
}

// Score scores one property. A nil assumptions pointer selects the engine defaults.
func (e *Engine) Score(p domain.RawProperty, strategy domain.Strategy, horizonYears int, assumptions *domain.InvestmentAssumptions) (domain.ScoredProperty, error) {
	return ScoreProperty(p, e.context(strategy, horizonYears, assumptions))
}

func (e *Engine) context(strategy domain.Strategy, horizonYears int, assumptions *domain.InvestmentAssumptions) domain.ScoringContext {
	a := e.defaults
	if assumptions != nil {
		a = *assumptions
	}
	return domain.ScoringContext{Strategy: strategy, HorizonYears: horizonYears, Assumptions: a}
}

// ScoreProperties applies hard filters, scores the rest concurrently and returns the
// top results, best first. Ties are broken by property ID so rankings are stable.
func (e *Engine) ScoreProperties(ctx context.Context, properties []domain.RawProperty, sctx domain.ScoringContext, f Filters, limit int) ([]domain.ScoredProperty, error) {
	if err := sctx.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]domain.RawProperty, 0, len(properties))
	for _, p := range properties {
		if passesHardFilters(f, p) {
			candidates = append(candidates, p)
		}
	}

	scored := make([]domain.ScoredProperty, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, p := range candidates {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sp, err := ScoreProperty(p, sctx)
			if err != nil {
				return err
			}
			scored[i] = sp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := scored[:0]
	for _, sp := range scored {
		if sp.Score >= f.MinScore {
			out = append(out, sp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Property.ID < out[j].Property.ID
	})

	if limit <= 0 {
		limit = defaultLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}

	e.log.Debug().
		Int("properties", len(properties)).
		Int("scored", len(candidates)).
		Int("returned", len(out)).
		Str("strategy", sctx.Strategy.String()).
		Int("horizon_years", sctx.HorizonYears).
		Msg("ranked properties")

	return out, nil
}

func passesHardFilters(f Filters, p domain.RawProperty) bool {
	if f.MinPrice > 0 && p.ListPrice < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.ListPrice > f.MaxPrice {
		return false
	}
	if f.MinBeds > 0 && (p.Beds == nil || *p.Beds < f.MinBeds) {
		return false
	}
	return true
}
