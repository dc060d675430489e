package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync/atomic"

	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// ProgressFunc is called as the upload body is sent.
type ProgressFunc func(sent, total int64)

// UploadLogo posts a logo file for a record as multipart form data under the "logo"
// field and returns the record echoed by the backend.
func (c *Client) UploadLogo(ctx context.Context, kind records.Kind, id, filename string, file io.Reader, progress ProgressFunc) (records.Raw, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: record id required", httpx.ErrValidation)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: logo file required", httpx.ErrValidation)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("logo", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("upload logo: read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	total := int64(body.Len())
	reader := &progressReader{r: body, total: total, fn: progress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(kind, nil, id, "upload-logo"), reader)
	if err != nil {
		return nil, fmt.Errorf("upload logo %s: build request: %w", kind, err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))

	data, err := c.send(req, kind, "upload-logo")
	if err != nil {
		return nil, err
	}
	raw, err := decodeOne(data)
	if err != nil {
		return nil, fmt.Errorf("upload logo %s: decode: %w", kind, err)
	}
	return raw, nil
}

type progressReader struct {
	r     io.Reader
	total int64
	sent  atomic.Int64
	fn    ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 && p.fn != nil {
		p.fn(p.sent.Add(int64(n)), p.total)
	}
	return n, err
}
