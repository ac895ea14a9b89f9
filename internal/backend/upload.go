package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/abelbrown/sylfinder/internal/model"
)

// UploadField is the multipart field the service reads the syllabus from.
const UploadField = "syllabus"

// Upload sends doc for topic extraction and returns topics with their
// candidate videos.
func (c *Client) Upload(ctx context.Context, token string, doc model.Document, lang model.Language) (model.UploadResult, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	body, contentType, err := multipartBody(doc)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	query := url.Values{"language": []string{string(lang)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload", query), body)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("upload: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	var resp uploadResponse
	if err := c.call("upload", req, &resp); err != nil {
		c.log.Warn("upload failed", "file", doc.Name, "language", lang, "err", err)
		return model.UploadResult{}, err
	}

	result := resp.toModel()
	c.log.Info("upload complete", "file", doc.Name, "language", lang, "topics", len(result.Topics))
	return result, nil
}

// multipartBody reads doc into a multipart form with the document under
// UploadField. The part keeps the document's declared media type.
func multipartBody(doc model.Document) (*bytes.Buffer, string, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", doc.Name, err)
	}
	defer f.Close()

	name := doc.Name
	if name == "" {
		name = filepath.Base(doc.Path)
	}
	mediaType := doc.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, UploadField, escapeQuotes(name)))
	h.Set("Content-Type", mediaType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", doc.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
