package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gtuventures/ventures-backend/internal/domain"
	es "github.com/gtuventures/ventures-backend/pkg/elasticsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchService_DatabaseFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Create(ctx, "news", input(map[string]any{
		"title": "Drone startup wins grant", "slug": "drone-grant",
		"content": "A student team building drones", "status": "published",
	}))
	require.NoError(t, err)
	_, err = f.content.Create(ctx, "news", input(map[string]any{
		"title": "Drone workshop", "slug": "drone-workshop", "content": "Draft only",
	}))
	require.NoError(t, err)
	_, err = f.tenders.CreateTender(ctx, input(map[string]any{"title": "Drone supply", "status": "published"}))
	require.NoError(t, err)

	res, err := f.search.Search(ctx, "drone", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "database", res.Backend)
	assert.Equal(t, int64(2), res.Total)
	require.Len(t, res.Hits, 2)

	types := []string{res.Hits[0].Type, res.Hits[1].Type}
	assert.ElementsMatch(t, []string{string(domain.TypeNews), string(domain.TypeTender)}, types)

	res, err = f.search.Search(ctx, "drone", string(domain.TypeNews), 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "drone-grant", res.Hits[0].Slug)
	assert.Equal(t, "Drone startup wins grant", res.Hits[0].Title)
}

func TestSearchService_DatabaseFallbackIgnoresKeysAndPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Create(ctx, "faq", input(map[string]any{
		"question": "When is demo day?", "answer": "In March", "status": "published",
	}))
	require.NoError(t, err)
	_, err = f.content.Create(ctx, "news", input(map[string]any{
		"title": "Cohort photos", "slug": "cohort-photos", "content": "From the first day", "status": "published",
	}, upload("images", "kickoff.jpg", "jpeg")))
	require.NoError(t, err)

	for _, q := range []string{"answer", "question", "images", "kickoff", "jpg", "content"} {
		res, err := f.search.Search(ctx, q, "", 1, 10)
		require.NoError(t, err)
		assert.Empty(t, res.Hits, "query %q", q)
		assert.Zero(t, res.Total, "query %q", q)
	}

	res, err := f.search.Search(ctx, "march", "", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, string(domain.TypeFAQ), res.Hits[0].Type)
}

func TestSearchService_EmptyQuery(t *testing.T) {
	f := newFixture(t)
	res, err := f.search.Search(context.Background(), "  ", "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Zero(t, res.Total)
}

func TestSearchService_DisabledIsNoop(t *testing.T) {
	var s *SearchService
	assert.False(t, s.Enabled())

	n, err := s.ReindexTenders(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)

	// indexing calls must not panic without a client
	s.IndexRecord(context.Background(), mustSchema(t, "news"), &domain.Record{ID: "1"})
	s.RemoveTender(context.Background(), "1")
}

func TestRecordDocument(t *testing.T) {
	schema := mustSchema(t, "news")
	slug := "launch"
	doc := recordDocument(schema, &domain.Record{
		ID:   "n1",
		Slug: &slug,
		Fields: map[string]any{
			"title":   "Launch",
			"content": "<p>Hello <b>founders</b></p>",
			"tags":    []any{"launch", "cohort"},
		},
	})

	assert.Equal(t, "news", doc.Type)
	assert.Equal(t, "Launch", doc.Title)
	assert.Equal(t, "launch", doc.Slug)
	assert.Contains(t, doc.Body, "Hello founders")
	assert.Contains(t, doc.Body, "cohort")
	assert.NotContains(t, doc.Body, "<p>")
}

func TestContentQuery_TypeFilter(t *testing.T) {
	q := contentQuery("incubation", "programs")
	boolQuery := q["query"].(map[string]any)["bool"].(map[string]any)
	assert.Contains(t, boolQuery, "filter")

	q = contentQuery("incubation", "")
	boolQuery = q["query"].(map[string]any)["bool"].(map[string]any)
	assert.NotContains(t, boolQuery, "filter")
}

func TestContentIndexName(t *testing.T) {
	assert.Equal(t, "ventures-content", contentIndexName(""))
	assert.Equal(t, "staging-content", contentIndexName("staging"))
}

func TestFromESResponse(t *testing.T) {
	res := fromESResponse(&es.SearchResponse{
		Total: 3,
		Hits: []es.Hit{
			{
				ID:        "news:1",
				Score:     2.5,
				Source:    json.RawMessage(`{"type":"news","record_id":"1","slug":"demo-day","title":"Demo Day","body":"..."}`),
				Highlight: map[string][]string{"title": {"<em>Demo</em> Day"}},
			},
			{ID: "news:2", Source: json.RawMessage(`"broken"`)},
		},
	})

	assert.Equal(t, "elasticsearch", res.Backend)
	assert.Equal(t, int64(3), res.Total)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, SearchHit{
		Type:      "news",
		ID:        "1",
		Slug:      "demo-day",
		Title:     "Demo Day",
		Score:     2.5,
		Highlight: map[string][]string{"title": {"<em>Demo</em> Day"}},
	}, res.Hits[0])
}
