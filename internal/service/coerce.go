package service

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
)

// Keys handled by the engine itself rather than stored in Fields
const (
	keyStatus      = "status"
	keyPublishedAt = "publishedAt"
	keySlug        = "slug"
)

var fieldValidator = validator.New()

// coerced is a submission after schema driven coercion
type coerced struct {
	Fields      map[string]any
	Cleared     []string // optional fields submitted empty on update
	Slug        *string
	Status      *domain.Status
	PublishedAt *time.Time
}

// coerceInput converts raw form/JSON values according to schema. With partial
// set only submitted fields are checked; otherwise every required field must be
// present, counting uploads for file fields.
func coerceInput(schema *domain.Schema, in *domain.ContentInput, partial bool) (*coerced, error) {
	out := &coerced{Fields: map[string]any{}}
	verr := &common.ValidationError{}

	values := map[string]any{}
	if in != nil && in.Values != nil {
		values = in.Values
	}

	if raw, ok := values[keyStatus]; ok {
		s, isString := raw.(string)
		status, valid := domain.ParseStatus(strings.TrimSpace(s))
		if !valid || (raw != nil && !isString) {
			verr.AddInvalid(keyStatus, "must be one of draft, published, archived")
		} else if s != "" || !partial {
			out.Status = &status
		}
	}
	if raw, ok := values[keyPublishedAt]; ok && !isBlank(raw) {
		t, err := parseDate(raw)
		if err != nil {
			verr.AddInvalid(keyPublishedAt, "must be a date (YYYY-MM-DD or RFC3339)")
		} else {
			out.PublishedAt = &t
		}
	}

	for _, f := range schema.Fields {
		raw, submitted := values[f.Name]
		if !submitted || isBlank(raw) {
			if f.Required && !partial && !hasUpload(in, f.Name) {
				verr.AddMissing(f.Name)
			} else if f.Required && submitted && !hasUpload(in, f.Name) {
				// clearing a required field on update
				verr.AddMissing(f.Name)
			} else if submitted && partial {
				out.Cleared = append(out.Cleared, f.Name)
			}
			continue
		}

		value, err := coerceValue(f, raw)
		if err != nil {
			verr.AddInvalid(f.Name, err.Error())
			continue
		}
		if f.Kind == domain.KindSlug {
			slug := value.(string)
			out.Slug = &slug
			continue
		}
		out.Fields[f.Name] = value
	}

	if schema.AllowUnknown {
		for k, v := range values {
			if _, known := schema.Field(k); known || k == keyStatus || k == keyPublishedAt {
				continue
			}
			out.Fields[k] = v
		}
	}

	if !verr.Empty() {
		return nil, verr
	}
	return out, nil
}

func hasUpload(in *domain.ContentInput, field string) bool {
	if in == nil {
		return false
	}
	for _, f := range in.Files {
		if f.Field == field {
			return true
		}
	}
	return false
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

func coerceValue(f domain.Field, raw any) (any, error) {
	switch f.Kind {
	case domain.KindString, domain.KindText:
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		if len(f.Options) > 0 && !slices.Contains(f.Options, s) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(f.Options, ", "))
		}
		return s, nil

	case domain.KindSlug:
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		slug := common.NormalizeSlug(s)
		if !common.IsValidSlug(slug) {
			return nil, fmt.Errorf("must contain only lowercase letters, digits and hyphens")
		}
		return slug, nil

	case domain.KindNumber:
		return toNumber(raw)

	case domain.KindBool:
		return toBool(raw)

	case domain.KindDate:
		t, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("must be a date (YYYY-MM-DD or RFC3339)")
		}
		return t.UTC().Format(time.RFC3339), nil

	case domain.KindList:
		return toList(raw)

	case domain.KindURL:
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		if err := fieldValidator.Var(s, "http_url"); err != nil {
			return nil, fmt.Errorf("must be an http(s) URL")
		}
		return s, nil

	case domain.KindEmail:
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		if err := fieldValidator.Var(s, "email"); err != nil {
			return nil, fmt.Errorf("must be an email address")
		}
		return s, nil

	case domain.KindFile:
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		p, err := common.NormalizeStoragePath(s)
		if err != nil {
			return nil, err
		}
		return p, nil

	case domain.KindFiles:
		items, err := toList(raw)
		if err != nil {
			return nil, err
		}
		paths := make([]any, 0, len(items))
		for _, item := range items {
			p, err := common.NormalizeStoragePath(item.(string))
			if err != nil {
				return nil, err
			}
			if p != "" {
				paths = append(paths, p)
			}
		}
		return paths, nil
	}
	return raw, nil
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("must be text")
	}
}

func toNumber(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("must be a number")
	}
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true, nil
		case "false", "off", "0", "no":
			return false, nil
		}
	}
	return false, fmt.Errorf("must be a boolean")
}

// toList accepts arrays or comma separated strings; items are trimmed and empties dropped
func toList(raw any) ([]any, error) {
	var items []string
	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		// JSON arrays arrive as strings from multipart forms
		if strings.HasPrefix(trimmed, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
				items = arr
				break
			}
		}
		items = strings.Split(v, ",")
	case []string:
		items = v
	case []any:
		for _, item := range v {
			s, err := toString(item)
			if err != nil {
				return nil, fmt.Errorf("must be a list of text values")
			}
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("must be a list")
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func parseDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("invalid date")
}

// stringField returns a string value from a coerced field map
func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// stringList returns the string items of a list or files value
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	case string:
		if t != "" {
			return []string{t}
		}
	}
	return nil
}
