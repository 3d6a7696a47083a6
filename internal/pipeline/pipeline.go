// Package pipeline runs leads through enrichment end to end: territory
// filter, contact resolution, scoring, persistence, and export.
package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/export"
	"github.com/sells-group/leadgen-cli/internal/geo"
	"github.com/sells-group/leadgen-cli/internal/icp"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scorer"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// DefaultWorkers bounds concurrent lead enrichment. Resolution hits third
// party websites, so the default stays low.
const DefaultWorkers = 3

// ContactResolver finds an email and social links on a lead's website.
type ContactResolver interface {
	Resolve(ctx context.Context, website string) model.ContactResult
}

// Pipeline wires the enrichment stages together. Resolver, territory, and
// sink are all optional; a nil stage is skipped.
type Pipeline struct {
	store     store.Store
	resolver  ContactResolver
	profile   *icp.Profile
	territory *geo.Territory
	sink      export.Sink
	workers   int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithResolver(r ContactResolver) Option { return func(p *Pipeline) { p.resolver = r } }
func WithTerritory(t *geo.Territory) Option { return func(p *Pipeline) { p.territory = t } }
func WithSink(s export.Sink) Option         { return func(p *Pipeline) { p.sink = s } }
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// New creates a Pipeline persisting to st and scoring against profile.
func New(st store.Store, profile *icp.Profile, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   st,
		profile: profile,
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stats summarizes one pipeline run.
type Stats struct {
	Total    int                 `json:"total"`
	Skipped  int                 `json:"skipped"`
	Resolved int                 `json:"resolved"`
	Scored   int                 `json:"scored"`
	Failed   int                 `json:"failed"`
	ByGrade  map[model.Grade]int `json:"byGrade"`
}

// Run enriches every lead. A failing lead is logged and counted, never
// fatal to the batch; Run returns an error only when the context dies or a
// sink write fails.
func (p *Pipeline) Run(ctx context.Context, leads []model.Lead) (*Stats, error) {
	stats := &Stats{
		Total:   len(leads),
		ByGrade: make(map[model.Grade]int),
	}
	configHash := scorer.ProfileHash(p.profile)

	var mu sync.Mutex // guards stats and the sink

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range leads {
		lead := &leads[i]
		g.Go(func() error {
			log := zap.L().With(zap.String("business", lead.BusinessName))

			if p.territory != nil && !p.territory.Allows(lead) {
				log.Debug("pipeline: lead outside territory")
				mu.Lock()
				stats.Skipped++
				mu.Unlock()
				return nil
			}

			resolved := p.enrich(gCtx, lead)

			id, err := p.store.UpsertLead(gCtx, lead)
			if err != nil {
				log.Warn("pipeline: upsert failed", zap.Error(err))
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}
			lead.ID = id

			result := scorer.Score(lead, p.profile)
			if err := p.store.SaveScore(gCtx, id, result, configHash); err != nil {
				log.Warn("pipeline: save score failed", zap.Error(err))
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}
			lead.ApplyScore(result)

			log.Info("pipeline: lead scored",
				zap.Int("score", result.Score),
				zap.String("grade", string(result.Grade)),
				zap.Bool("resolved", resolved),
			)

			mu.Lock()
			defer mu.Unlock()
			stats.Scored++
			stats.ByGrade[result.Grade]++
			if resolved {
				stats.Resolved++
			}
			if p.sink != nil {
				if err := p.sink.Emit(gCtx, lead); err != nil {
					return eris.Wrapf(err, "pipeline: emit %s", lead.BusinessName)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	if p.sink != nil {
		if err := p.sink.Flush(ctx); err != nil {
			return stats, eris.Wrap(err, "pipeline: flush sink")
		}
	}

	zap.L().Info("pipeline: run complete",
		zap.Int("total", stats.Total),
		zap.Int("scored", stats.Scored),
		zap.Int("resolved", stats.Resolved),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// enrich fills missing contact data from the lead's website. Reports
// whether resolution produced anything new.
func (p *Pipeline) enrich(ctx context.Context, lead *model.Lead) bool {
	if p.resolver == nil || !lead.HasWebsite() {
		return false
	}

	contact := p.resolver.Resolve(ctx, *lead.Website)

	found := false
	if lead.Email == nil && contact.Email != nil {
		lead.Email = contact.Email
		valid := true
		lead.EmailValid = &valid
		found = true
	}
	if contact.SocialLinks.Count() > 0 {
		merged := lead.SocialLinks.Merge(contact.SocialLinks)
		if merged.Count() > lead.SocialLinks.Count() {
			found = true
		}
		lead.SocialLinks = merged
	}
	return found
}
