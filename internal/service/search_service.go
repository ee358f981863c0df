package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/repository"
	es "github.com/gtuventures/ventures-backend/pkg/elasticsearch"
	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// ContentDocument is a published record as stored in the search index
type ContentDocument struct {
	Type        string `json:"type"`
	RecordID    string `json:"record_id"`
	Slug        string `json:"slug,omitempty"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at,omitempty"`
}

// SearchHit is one search result across content types
type SearchHit struct {
	Type      string              `json:"type"`
	ID        string              `json:"id"`
	Slug      string              `json:"slug,omitempty"`
	Title     string              `json:"title"`
	Score     float64             `json:"score,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// SearchResults is a page of hits
type SearchResults struct {
	Total   int64       `json:"total"`
	Hits    []SearchHit `json:"hits"`
	Backend string      `json:"backend"`
}

// ErrSearchDisabled is returned by operations that need Elasticsearch
var ErrSearchDisabled = errors.New("elasticsearch is not enabled")

// ContentIndexer keeps the search index in step with content writes
type ContentIndexer interface {
	IndexRecord(ctx context.Context, schema *domain.Schema, rec *domain.Record)
	RemoveRecord(ctx context.Context, contentType domain.ContentType, id string)
	IndexTender(ctx context.Context, t *domain.Tender)
	RemoveTender(ctx context.Context, id string)
}

// SearchService searches published content with Elasticsearch when it is
// configured and falls back to substring matching in the database otherwise.
type SearchService struct {
	esClient *es.Client
	index    string
	content  repository.ContentRepository
	tenders  repository.TenderRepository
}

// NewSearchService creates a new SearchService; esClient may be nil
func NewSearchService(esClient *es.Client, indexPrefix string, content repository.ContentRepository, tenders repository.TenderRepository) *SearchService {
	return &SearchService{
		esClient: esClient,
		index:    contentIndexName(indexPrefix),
		content:  content,
		tenders:  tenders,
	}
}

// Enabled reports whether Elasticsearch backs the search
func (s *SearchService) Enabled() bool {
	return s != nil && s.esClient != nil
}

// EnsureIndex creates the content index if it does not exist yet
func (s *SearchService) EnsureIndex(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.esClient.CreateIndex(ctx, s.index, contentIndexBody())
}

func docID(contentType domain.ContentType, id string) string {
	return string(contentType) + ":" + id
}

// IndexRecord indexes a published record and removes any other from the index
func (s *SearchService) IndexRecord(ctx context.Context, schema *domain.Schema, rec *domain.Record) {
	if !s.Enabled() {
		return
	}
	if !rec.IsPublished() {
		s.RemoveRecord(ctx, schema.Type, rec.ID)
		return
	}
	if err := s.esClient.IndexDocument(ctx, s.index, docID(schema.Type, rec.ID), recordDocument(schema, rec)); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Str("type", string(schema.Type)).
			Str("id", rec.ID).
			Msg("failed to index record")
	}
}

// RemoveRecord drops a record from the index
func (s *SearchService) RemoveRecord(ctx context.Context, contentType domain.ContentType, id string) {
	if !s.Enabled() {
		return
	}
	if err := s.esClient.DeleteDocument(ctx, s.index, docID(contentType, id)); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Str("type", string(contentType)).
			Str("id", id).
			Msg("failed to remove record from index")
	}
}

// IndexTender indexes the latest published version of a chain
func (s *SearchService) IndexTender(ctx context.Context, t *domain.Tender) {
	if !s.Enabled() {
		return
	}
	if !t.IsLatest || t.Status != domain.StatusPublished {
		s.RemoveTender(ctx, t.ID)
		return
	}
	if err := s.esClient.IndexDocument(ctx, s.index, docID(domain.TypeTender, t.ID), tenderDocument(t)); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("id", t.ID).Msg("failed to index tender")
	}
}

// RemoveTender drops a tender version from the index
func (s *SearchService) RemoveTender(ctx context.Context, id string) {
	s.RemoveRecord(ctx, domain.TypeTender, id)
}

// Search runs q against published content, optionally limited to one type
func (s *SearchService) Search(ctx context.Context, q, contentType string, page, perPage int) (*SearchResults, error) {
	q = strings.TrimSpace(q)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = 10
	}
	if q == "" {
		return &SearchResults{Hits: []SearchHit{}, Backend: s.backend()}, nil
	}

	if s.Enabled() {
		resp, err := s.esClient.Search(ctx, s.index, contentQuery(q, contentType), (page-1)*perPage, perPage)
		if err == nil {
			return fromESResponse(resp), nil
		}
		pkglogger.GetLogger().Warn().Err(err).Msg("elasticsearch search failed, falling back to database")
	}
	return s.searchDatabase(ctx, q, contentType, page, perPage)
}

func (s *SearchService) backend() string {
	if s.Enabled() {
		return "elasticsearch"
	}
	return "database"
}

func fromESResponse(resp *es.SearchResponse) *SearchResults {
	out := &SearchResults{Total: resp.Total, Hits: make([]SearchHit, 0, len(resp.Hits)), Backend: "elasticsearch"}
	for _, h := range resp.Hits {
		var doc ContentDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("id", h.ID).Msg("skipping undecodable search hit")
			continue
		}
		out.Hits = append(out.Hits, SearchHit{
			Type:      doc.Type,
			ID:        doc.RecordID,
			Slug:      doc.Slug,
			Title:     doc.Title,
			Score:     h.Score,
			Highlight: h.Highlight,
		})
	}
	return out
}

type timedHit struct {
	hit     SearchHit
	created time.Time
}

// searchDatabase matches q as a substring of published records, newest first
func (s *SearchService) searchDatabase(ctx context.Context, q, contentType string, page, perPage int) (*SearchResults, error) {
	want := page * perPage
	var hits []timedHit
	var total int64

	for _, schema := range domain.Schemas() {
		if contentType != "" && string(schema.Type) != contentType {
			continue
		}
		records, n, err := s.content.List(ctx, schema.Table, domain.ListOptions{
			Status:       domain.StatusPublished,
			Search:       q,
			SearchFields: schema.SearchFields(),
			Limit:        min(want, 100),
		})
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", schema.Type, err)
		}
		total += n
		for _, rec := range records {
			hits = append(hits, timedHit{
				hit: SearchHit{
					Type:  string(schema.Type),
					ID:    rec.ID,
					Slug:  rec.SlugValue(),
					Title: stringField(rec.Fields, schema.TitleField),
				},
				created: rec.CreatedAt,
			})
		}
	}

	if contentType == "" || contentType == string(domain.TypeTender) {
		tenders, n, err := s.tenders.List(ctx, domain.TenderListOptions{
			ListOptions: domain.ListOptions{Status: domain.StatusPublished, Search: q, Limit: min(want, 100)},
		})
		if err != nil {
			return nil, fmt.Errorf("search tenders: %w", err)
		}
		total += n
		for _, t := range tenders {
			hits = append(hits, timedHit{
				hit:     SearchHit{Type: string(domain.TypeTender), ID: t.ID, Title: t.Title},
				created: t.CreatedAt,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].created.After(hits[j].created) })

	out := &SearchResults{Total: total, Hits: []SearchHit{}, Backend: "database"}
	start := (page - 1) * perPage
	for i := start; i < len(hits) && i < start+perPage; i++ {
		out.Hits = append(out.Hits, hits[i].hit)
	}
	return out, nil
}

// Reindex bulk-indexes every published record of every type concurrently
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, ErrSearchDisabled
	}
	if err := s.EnsureIndex(ctx); err != nil {
		return 0, err
	}

	var indexed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, schema := range domain.Schemas() {
		g.Go(func() error {
			n, err := s.ReindexType(gctx, schema)
			indexed.Add(int64(n))
			return err
		})
	}
	g.Go(func() error {
		n, err := s.ReindexTenders(gctx)
		indexed.Add(int64(n))
		return err
	})

	err := g.Wait()
	pkglogger.GetLogger().Info().Int64("count", indexed.Load()).Err(err).Msg("search reindex finished")
	return int(indexed.Load()), err
}

// ReindexType bulk-indexes the published records of one type
func (s *SearchService) ReindexType(ctx context.Context, schema *domain.Schema) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	records, err := s.content.ListByStatus(ctx, schema.Table, domain.StatusPublished)
	if err != nil {
		return 0, err
	}
	docs := make([]es.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, es.Document{ID: docID(schema.Type, rec.ID), Body: recordDocument(schema, rec)})
	}
	if err := s.esClient.BulkIndex(ctx, s.index, docs); err != nil {
		return 0, fmt.Errorf("bulk index %s: %w", schema.Type, err)
	}
	return len(docs), nil
}

// ReindexTenders bulk-indexes the published latest tender versions
func (s *SearchService) ReindexTenders(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	tenders, err := s.tenders.ListPublishedLatest(ctx)
	if err != nil {
		return 0, err
	}
	docs := make([]es.Document, 0, len(tenders))
	for _, t := range tenders {
		docs = append(docs, es.Document{ID: docID(domain.TypeTender, t.ID), Body: tenderDocument(t)})
	}
	if err := s.esClient.BulkIndex(ctx, s.index, docs); err != nil {
		return 0, fmt.Errorf("bulk index tenders: %w", err)
	}
	return len(docs), nil
}

func recordDocument(schema *domain.Schema, rec *domain.Record) ContentDocument {
	var body []string
	for _, f := range schema.Fields {
		if f.Name == schema.TitleField {
			continue
		}
		switch f.Kind {
		case domain.KindString, domain.KindText:
			if v := stringField(rec.Fields, f.Name); v != "" {
				body = append(body, stripHTML(v))
			}
		case domain.KindList:
			body = append(body, stringList(rec.Fields[f.Name])...)
		}
	}
	doc := ContentDocument{
		Type:     string(schema.Type),
		RecordID: rec.ID,
		Slug:     rec.SlugValue(),
		Title:    stringField(rec.Fields, schema.TitleField),
		Body:     strings.Join(body, "\n"),
	}
	if rec.PublishedAt != nil {
		doc.PublishedAt = rec.PublishedAt.UTC().Format(time.RFC3339)
	}
	return doc
}

func tenderDocument(t *domain.Tender) ContentDocument {
	doc := ContentDocument{
		Type:     string(domain.TypeTender),
		RecordID: t.ID,
		Title:    t.Title,
		Body:     stripHTML(stringField(t.Fields, "description")),
	}
	if t.PublishedAt != nil {
		doc.PublishedAt = t.PublishedAt.UTC().Format(time.RFC3339)
	}
	return doc
}

// stripHTML removes HTML tags (simple version)
func stripHTML(s string) string {
	var result strings.Builder
	inTag := false
	for _, r := range s {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}
	return result.String()
}
