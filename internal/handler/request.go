package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/pkg/ginutil"
)

// Form keys that steer the request instead of being stored
const (
	formReplaceImages      = "replaceImages"
	formRemoveFiles        = "removeFiles"
	formFailedTenderEdit   = "isFailedTenderEdit"
	multipartMemoryDefault = 8 << 20
)

// errBodyTooLarge marks a body rejected by the upload size limit
var errBodyTooLarge = errors.New("request body too large")

// submission is a parsed admin write request
type submission struct {
	Input            *domain.ContentInput
	FailedTenderEdit bool
}

// bindSubmission reads a JSON or multipart body into a ContentInput
func bindSubmission(c *gin.Context) (*submission, error) {
	values := map[string]any{}
	var files []domain.UploadedFile

	contentType := c.ContentType()
	switch {
	case contentType == "multipart/form-data", contentType == "application/x-www-form-urlencoded":
		var err error
		values, files, err = readForm(c)
		if err != nil {
			return nil, err
		}
	case c.Request.ContentLength == 0:
		// empty body: a partial update that only uploads nothing
	default:
		if err := c.ShouldBindJSON(&values); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, errBodyTooLarge
			}
			return nil, fmt.Errorf("%w: malformed JSON body", common.ErrInvalidInput)
		}
	}

	sub := &submission{Input: &domain.ContentInput{Files: files}}
	if raw, ok := values[formReplaceImages]; ok {
		sub.Input.ReplaceImages = boolValue(raw)
		delete(values, formReplaceImages)
	}
	if raw, ok := values[formRemoveFiles]; ok {
		sub.Input.RemoveFiles = stringValues(raw)
		delete(values, formRemoveFiles)
	}
	if raw, ok := values[formFailedTenderEdit]; ok {
		sub.FailedTenderEdit = boolValue(raw)
		delete(values, formFailedTenderEdit)
	}
	sub.Input.Values = values
	return sub, nil
}

func readForm(c *gin.Context) (map[string]any, []domain.UploadedFile, error) {
	if err := c.Request.ParseMultipartForm(multipartMemoryDefault); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, errBodyTooLarge
		}
		return nil, nil, fmt.Errorf("%w: malformed form body", common.ErrInvalidInput)
	}

	values := map[string]any{}
	form := c.Request.PostForm
	if c.Request.MultipartForm != nil {
		form = c.Request.MultipartForm.Value
	}
	for key, vals := range form {
		name := strings.TrimSuffix(key, "[]")
		if len(vals) == 1 && !strings.HasSuffix(key, "[]") {
			values[name] = vals[0]
			continue
		}
		list := make([]any, 0, len(vals))
		for _, v := range vals {
			list = append(list, v)
		}
		values[name] = list
	}

	var files []domain.UploadedFile
	if c.Request.MultipartForm != nil {
		for key, headers := range c.Request.MultipartForm.File {
			for _, fh := range headers {
				files = append(files, uploadedFile(strings.TrimSuffix(key, "[]"), fh))
			}
		}
	}
	return values, files, nil
}

func uploadedFile(field string, fh *multipart.FileHeader) domain.UploadedFile {
	return domain.UploadedFile{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (domain.ReadSeekCloser, error) {
			return fh.Open()
		},
	}
}

func boolValue(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return ginutil.ParseBool(v, false)
	case float64:
		return v != 0
	}
	return false
}

// stringValues accepts a list, a JSON array string or a comma separated string
func stringValues(raw any) []string {
	var out []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, stringValues(s)...)
			}
		}
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err == nil {
				return arr
			}
		}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// respondError maps handler and service errors onto the error envelope
func respondError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, errBodyTooLarge) {
		common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Upload exceeds the size limit", nil)
		return
	}
	common.HandleError(c, err, notFoundMsg)
}

// listParams reads the shared paging and filter query parameters
func listParams(c *gin.Context) (domain.ListOptions, error) {
	opts := domain.ListOptions{
		Search: strings.TrimSpace(c.Query("q")),
		Page:   ginutil.QueryInt(c, "page", 1),
		Limit:  ginutil.QueryInt(c, "limit", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return opts, fmt.Errorf("%w: unknown status %q", common.ErrInvalidInput, raw)
		}
		opts.Status = status
	}
	opts.Normalize()
	return opts, nil
}
