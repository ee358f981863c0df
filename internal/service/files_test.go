package service

import (
	"testing"

	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

// applyAndCollect runs applyFiles the way the services do and returns the
// objects left unreferenced
func applyAndCollect(schema *domain.Schema, fields map[string]any, uploads map[string][]string, replace bool, remove []string) []string {
	candidates := referencedFiles(schema, fields)
	for _, paths := range uploads {
		candidates = append(candidates, paths...)
	}
	applyFiles(schema, fields, uploads, replace, remove)
	return unreferenced(candidates, referencedFiles(schema, fields))
}

func TestApplyFiles(t *testing.T) {
	news := mustSchema(t, "news")
	partner := mustSchema(t, "partner")

	t.Run("append to multi file field", func(t *testing.T) {
		fields := map[string]any{"images": []any{"news/a.png"}}
		orphaned := applyAndCollect(news, fields, map[string][]string{"images": {"news/b.png"}}, false, nil)
		assert.Empty(t, orphaned)
		assert.Equal(t, []any{"news/a.png", "news/b.png"}, fields["images"])
	})

	t.Run("replace multi file field", func(t *testing.T) {
		fields := map[string]any{"images": []any{"news/a.png"}}
		orphaned := applyAndCollect(news, fields, map[string][]string{"images": {"news/b.png"}}, true, nil)
		assert.Equal(t, []string{"news/a.png"}, orphaned)
		assert.Equal(t, []any{"news/b.png"}, fields["images"])
	})

	t.Run("replace without uploads keeps images", func(t *testing.T) {
		fields := map[string]any{"images": []any{"news/a.png"}}
		orphaned := applyAndCollect(news, fields, nil, true, nil)
		assert.Empty(t, orphaned)
		assert.Equal(t, []any{"news/a.png"}, fields["images"])
	})

	t.Run("remove listed files", func(t *testing.T) {
		fields := map[string]any{"images": []any{"news/a.png", "news/b.png"}}
		orphaned := applyAndCollect(news, fields, nil, false, []string{`news\a.png`})
		assert.Equal(t, []string{"news/a.png"}, orphaned)
		assert.Equal(t, []any{"news/b.png"}, fields["images"])
	})

	t.Run("single file keeps last upload", func(t *testing.T) {
		fields := map[string]any{"logo": "partners/old.png"}
		orphaned := applyAndCollect(partner, fields, map[string][]string{"logo": {"partners/1.png", "partners/2.png"}}, false, nil)
		assert.ElementsMatch(t, []string{"partners/old.png", "partners/1.png"}, orphaned)
		assert.Equal(t, "partners/2.png", fields["logo"])
	})
}

func TestUnreferenced(t *testing.T) {
	assert.Equal(t, []string{"a"}, unreferenced([]string{"a", "b"}, []string{"b", "c"}))
	assert.Nil(t, unreferenced(nil, []string{"x"}))
}
