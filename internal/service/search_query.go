package service

// contentIndexName is the single index holding published content of every type
func contentIndexName(prefix string) string {
	if prefix == "" {
		prefix = "ventures"
	}
	return prefix + "-content"
}

// contentIndexBody maps the fields of ContentDocument
func contentIndexBody() map[string]any {
	keyword := map[string]any{"type": "keyword"}
	text := map[string]any{"type": "text"}
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"type":         keyword,
				"record_id":    keyword,
				"slug":         keyword,
				"title":        text,
				"body":         text,
				"published_at": map[string]any{"type": "date"},
			},
		},
	}
}

// contentQuery matches q against titles (boosted) and bodies. A non-empty
// contentType narrows the match to that type without affecting scores.
func contentQuery(q, contentType string) map[string]any {
	boolQuery := map[string]any{
		"must": []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":  q,
					"fields": []string{"title^3", "body"},
				},
			},
		},
	}
	if contentType != "" {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{"type": contentType}},
		}
	}
	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"highlight": map[string]any{
			"fields": map[string]any{
				"title": map[string]any{},
				"body":  map[string]any{"fragment_size": 150, "number_of_fragments": 2},
			},
		},
	}
}
