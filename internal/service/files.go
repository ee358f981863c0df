package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"github.com/gtuventures/ventures-backend/pkg/storage"
)

// storeUploads saves the uploads addressed to file fields of schema.
// On failure every object saved so far is removed again.
func storeUploads(ctx context.Context, store storage.Storage, schema *domain.Schema, files []domain.UploadedFile) (map[string][]string, []string, error) {
	byField := map[string][]string{}
	var saved []string

	for _, upload := range files {
		f, ok := schema.Field(upload.Field)
		if !ok || !f.IsFile() {
			pkglogger.GetLogger().Debug().
				Str("type", string(schema.Type)).
				Str("field", upload.Field).
				Msg("ignoring upload for non-file field")
			continue
		}
		if store == nil {
			return nil, nil, fmt.Errorf("file storage is not configured")
		}

		p, err := saveUpload(ctx, store, schema.Table, upload)
		if err != nil {
			discardObjects(ctx, store, saved)
			return nil, nil, err
		}
		saved = append(saved, p)
		byField[f.Name] = append(byField[f.Name], p)
	}
	return byField, saved, nil
}

func saveUpload(ctx context.Context, store storage.Storage, prefix string, upload domain.UploadedFile) (string, error) {
	r, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", upload.Filename, err)
	}
	defer r.Close()

	key := storage.GenerateKey(prefix, upload.Filename)
	p, err := store.Save(ctx, key, r, upload.Size, upload.ContentType)
	if err != nil {
		return "", fmt.Errorf("store upload %s: %w", upload.Filename, err)
	}
	return common.NormalizeStoragePath(p)
}

// discardObjects removes stored objects; failures are logged, never surfaced
func discardObjects(ctx context.Context, store storage.Storage, paths []string) {
	if store == nil {
		return
	}
	for _, p := range paths {
		if p == "" || isExternalURL(p) {
			continue
		}
		if err := store.Delete(ctx, p); err != nil {
			storageObjectsDeleted.WithLabelValues("error").Inc()
			pkglogger.GetLogger().Warn().Err(err).Str("path", p).Msg("failed to delete stored object")
			continue
		}
		storageObjectsDeleted.WithLabelValues("ok").Inc()
	}
}

func isExternalURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// referencedFiles lists every stored path the fields reference
func referencedFiles(schema *domain.Schema, fields map[string]any) []string {
	var out []string
	for _, f := range schema.FileFields() {
		out = append(out, stringList(fields[f.Name])...)
	}
	return out
}

// applyFiles merges uploads into the file fields and drops the paths listed in
// remove. Objects that end up unreferenced are found afterwards by comparing
// referencedFiles before and after.
func applyFiles(schema *domain.Schema, fields map[string]any, uploads map[string][]string, replaceMulti bool, remove []string) {
	removeSet := map[string]bool{}
	for _, r := range remove {
		if p, err := common.NormalizeStoragePath(r); err == nil && p != "" {
			removeSet[p] = true
		}
	}

	for _, f := range schema.FileFields() {
		current := stringList(fields[f.Name])
		added := uploads[f.Name]

		switch f.Kind {
		case domain.KindFile:
			if len(added) > 0 {
				// a single-file field keeps the last upload
				fields[f.Name] = added[len(added)-1]
			} else if len(current) == 1 && removeSet[current[0]] {
				delete(fields, f.Name)
			}

		case domain.KindFiles:
			kept := make([]any, 0, len(current)+len(added))
			for _, p := range current {
				if (replaceMulti && len(added) > 0) || removeSet[p] {
					continue
				}
				kept = append(kept, p)
			}
			for _, p := range added {
				kept = append(kept, p)
			}
			if len(kept) == 0 {
				delete(fields, f.Name)
			} else {
				fields[f.Name] = kept
			}
		}
	}
}
