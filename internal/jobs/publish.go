package jobs

import (
	"context"
	"time"

	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	"github.com/gtuventures/ventures-backend/pkg/cache"
	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultPublishSpec runs the scheduled publishing sweep every minute
const DefaultPublishSpec = "@every 1m"

// Reindexer refreshes the search index for one content type
type Reindexer interface {
	ReindexType(ctx context.Context, schema *domain.Schema) (int, error)
	ReindexTenders(ctx context.Context) (int, error)
}

// Publisher promotes drafts whose published_at has passed
type Publisher struct {
	content repository.ContentRepository
	tenders repository.TenderRepository
	cache   cache.Service
	search  Reindexer
	now     func() time.Time
}

// NewPublisher creates a Publisher; cache and search may be nil
func NewPublisher(content repository.ContentRepository, tenders repository.TenderRepository, c cache.Service, search Reindexer) *Publisher {
	if c == nil {
		c = cache.NewService(nil)
	}
	return &Publisher{content: content, tenders: tenders, cache: c, search: search, now: time.Now}
}

// RunOnce sweeps every content table and the tender collection once
func (p *Publisher) RunOnce(ctx context.Context) (int64, error) {
	now := p.now()
	log := pkglogger.WithComponent("publisher")
	var total int64

	for _, schema := range domain.Schemas() {
		n, err := p.content.PublishDue(ctx, schema.Table, now)
		if err != nil {
			return total, err
		}
		if n == 0 {
			continue
		}
		total += n
		log.Info().Str("type", string(schema.Type)).Int64("count", n).Msg("published scheduled records")
		p.refresh(ctx, string(schema.Type), func() error {
			_, err := p.search.ReindexType(ctx, schema)
			return err
		})
	}

	n, err := p.tenders.PublishDue(ctx, now)
	if err != nil {
		return total, err
	}
	if n > 0 {
		total += n
		log.Info().Int64("count", n).Msg("published scheduled tenders")
		p.refresh(ctx, string(domain.TypeTender), func() error {
			_, err := p.search.ReindexTenders(ctx)
			return err
		})
	}
	return total, nil
}

func (p *Publisher) refresh(ctx context.Context, contentType string, reindex func() error) {
	if err := p.cache.InvalidateType(ctx, contentType); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("type", contentType).Msg("cache invalidation failed")
	}
	if p.search == nil {
		return
	}
	if err := reindex(); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("type", contentType).Msg("search refresh failed")
	}
}

// SchedulePublishing starts a cron job running RunOnce on spec; it stops when ctx is done
func SchedulePublishing(ctx context.Context, p *Publisher, spec string) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultPublishSpec
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := p.RunOnce(runCtx); err != nil {
			pkglogger.GetLogger().Error().Err(err).Msg("scheduled publishing failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
