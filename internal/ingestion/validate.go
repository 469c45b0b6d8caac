package ingestion

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
	"github.com/yungbote/neurobridge-docchat/internal/view"
)

const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var DefaultAllowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"text/markdown",
	"text/x-markdown",
	"text/html",
	"text/css",
	"text/javascript",
	"application/javascript",
	"application/json",
}

// mediaType strips parameters and lowercases. It returns "" for anything
// that does not parse.
func mediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

// Check runs the upload pre-checks. Size is checked first.
func (c *Coordinator) Check(f domain.File) error {
	if f.SizeBytes > c.maxFileSize {
		return apierr.New(apierr.KindFileTooLarge, "file_too_large",
			fmt.Sprintf("File is %s; the limit is %s.", view.FormatFileSize(f.SizeBytes), view.FormatFileSize(c.maxFileSize)))
	}
	mt := mediaType(f.ContentType)
	if _, ok := c.allowed[mt]; !ok {
		label := mt
		if label == "" {
			label = "unknown"
		}
		return apierr.New(apierr.KindUnsupportedFileType, "unsupported_file_type",
			fmt.Sprintf("File type %s is not supported.", label))
	}
	return nil
}

func (c *Coordinator) Validate(f domain.File) bool {
	return c.Check(f) == nil
}

// cappedBody fails the read that takes a body past limit, whatever size the
// file declared.
type cappedBody struct {
	r     io.Reader
	n     int64
	limit int64
}

func (c *Coordinator) capBody(f domain.File) domain.File {
	f.Body = &cappedBody{r: io.LimitReader(f.Body, c.maxFileSize+1), limit: c.maxFileSize}
	return f
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.n += int64(n)
	if b.n > b.limit {
		return n, apierr.New(apierr.KindFileTooLarge, "file_too_large",
			fmt.Sprintf("File is larger than the %s limit.", view.FormatFileSize(b.limit)))
	}
	return n, err
}
