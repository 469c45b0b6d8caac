package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
)

// POST /documents/upload/ (multipart field "file")
//
// A positive SizeBytes is an upper bound: a body longer than declared is
// rejected before anything is sent.
func (c *Client) UploadDocument(ctx context.Context, f domain.File) (domain.Document, error) {
	var out domain.Document
	if f.Body == nil {
		return out, fmt.Errorf("upload %q: empty body", f.Name)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(f.Name)))
	if ct := strings.TrimSpace(f.ContentType); ct != "" {
		hdr.Set("Content-Type", ct)
	} else {
		hdr.Set("Content-Type", "application/octet-stream")
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return out, err
	}
	body := f.Body
	if f.SizeBytes > 0 {
		body = io.LimitReader(f.Body, f.SizeBytes+1)
	}
	n, err := io.Copy(part, body)
	if err != nil {
		return out, fmt.Errorf("read %q: %w", f.Name, err)
	}
	if f.SizeBytes > 0 && n > f.SizeBytes {
		return out, apierr.Validation("size_mismatch",
			fmt.Sprintf("%s is larger than its declared size.", filepath.Base(f.Name)))
	}
	if err := mw.Close(); err != nil {
		return out, err
	}

	err = c.do(ctx, request{
		method:      http.MethodPost,
		route:       "/documents/upload/",
		path:        "/documents/upload/",
		contentType: mw.FormDataContentType(),
		body:        buf.Bytes(),
	}, &out)
	return out, err
}

// GET /documents/
func (c *Client) ListDocuments(ctx context.Context) (domain.Page[domain.Document], error) {
	var out domain.Page[domain.Document]
	err := c.doJSON(ctx, http.MethodGet, "/documents/", "/documents/", nil, nil, &out)
	return out, err
}

// DELETE /documents/{id}
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/documents/{id}", "/documents/"+escape(id), nil, nil, nil)
}

// GET /documents/{id}/status
func (c *Client) DocumentStatus(ctx context.Context, id string) (domain.Document, error) {
	var out domain.Document
	err := c.doJSON(ctx, http.MethodGet, "/documents/{id}/status", "/documents/"+escape(id)+"/status", nil, nil, &out)
	return out, err
}
