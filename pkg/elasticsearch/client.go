package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Client is a thin document store over one Elasticsearch cluster
type Client struct {
	es *elasticsearch.Client
}

// NewClient connects to addresses and fails if the cluster does not answer
func NewClient(addresses []string, username, password string) (*Client, error) {
	cfg := elasticsearch.Config{Addresses: addresses}
	if username != "" {
		cfg.Username = username
		cfg.Password = password
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client creation failed: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch connection failed: %w", err)
	}
	defer res.Body.Close()
	if err := responseError("info", res); err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().Strs("addresses", addresses).Msg("connected to Elasticsearch")
	return &Client{es: es}, nil
}

// Document is one entry of a bulk request
type Document struct {
	ID   string
	Body any
}

// IndexDocument stores body under docID, replacing any earlier version
func (c *Client) IndexDocument(ctx context.Context, index, docID string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", docID, err)
	}

	res, err := esapi.IndexRequest{
		Index:      index,
		DocumentID: docID,
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return responseError("index "+docID, res)
}

// DeleteDocument removes docID; a document that is already gone is not an error
func (c *Client) DeleteDocument(ctx context.Context, index, docID string) error {
	res, err := esapi.DeleteRequest{Index: index, DocumentID: docID}.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError("delete "+docID, res)
}

// BulkIndex stores docs in one request, in the given order
func (c *Client) BulkIndex(ctx context.Context, index string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		meta := map[string]any{"index": map[string]any{"_index": index, "_id": d.ID}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta %s: %w", d.ID, err)
		}
		if err := enc.Encode(d.Body); err != nil {
			return fmt.Errorf("encode bulk document %s: %w", d.ID, err)
		}
	}

	res, err := c.es.Bulk(&buf, c.es.Bulk.WithContext(ctx), c.es.Bulk.WithRefresh("false"))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := responseError("bulk", res); err != nil {
		return err
	}

	// a bulk request succeeds as a whole even when single items fail
	var summary struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string          `json:"_id"`
			Error json.RawMessage `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil || !summary.Errors {
		return nil
	}
	for _, item := range summary.Items {
		for _, r := range item {
			if len(r.Error) > 0 {
				return fmt.Errorf("bulk item %s: %s", r.ID, r.Error)
			}
		}
	}
	return nil
}

// Hit is one search match; Source is left encoded for the caller to decode
type Hit struct {
	ID        string              `json:"_id"`
	Score     float64             `json:"_score"`
	Source    json.RawMessage     `json:"_source"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// SearchResponse is a page of hits plus the total match count
type SearchResponse struct {
	Total int64
	Hits  []Hit
}

// Search runs query against index and returns one page starting at from
func (c *Client) Search(ctx context.Context, index string, query any, from, size int) (*SearchResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(&buf),
		c.es.Search.WithFrom(from),
		c.es.Search.WithSize(size),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if err := responseError("search", res); err != nil {
		return nil, err
	}
	return decodeSearchResponse(res.Body)
}

func decodeSearchResponse(r io.Reader) (*SearchResponse, error) {
	var raw struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []Hit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &SearchResponse{Total: raw.Hits.Total.Value, Hits: raw.Hits.Hits}, nil
}

// CreateIndex creates index with body unless it already exists
func (c *Client) CreateIndex(ctx context.Context, index string, body any) error {
	res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("encode index body: %w", err)
	}

	res, err = c.es.Indices.Create(index, c.es.Indices.Create.WithBody(&buf), c.es.Indices.Create.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	err = responseError("create index "+index, res)
	if err != nil && strings.Contains(err.Error(), "resource_already_exists_exception") {
		// lost a race with another instance
		return nil
	}
	return err
}

// responseError turns an error status into an error carrying the response body
func responseError(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("elasticsearch %s [%s]: read body: %w", op, res.Status(), err)
	}
	return fmt.Errorf("elasticsearch %s [%s]: %s", op, res.Status(), bytes.TrimSpace(body))
}
