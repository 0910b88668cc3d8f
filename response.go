package jqassert

import (
	"compress/gzip"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/gjson"
)

// Response is the read-only view of an HTTP response the assertions run
// against.
type Response struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       string
}

// NewResponse wraps an already-decoded body.
func NewResponse(statusCode int, body string) *Response {
	return &Response{StatusCode: statusCode, Headers: http.Header{}, Body: body}
}

// FromRecorder adapts a stdlib test recorder.
func FromRecorder(rec *httptest.ResponseRecorder) *Response {
	return &Response{
		StatusCode: rec.Code,
		Headers:    rec.Header().Clone(),
		Body:       rec.Body.String(),
	}
}

// FromHTTPResponse drains resp.Body and transparently decompresses it when
// the Content-Encoding is one we support. The body is closed in all cases.
func FromHTTPResponse(resp *http.Response) (*Response, error) {
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	out := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		Body:       string(body),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		out.URL = resp.Request.URL.String()
	}
	return out, nil
}

func decodeBody(resp *http.Response) ([]byte, error) {
	var decoder io.Reader = resp.Body
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
	case "gzip":
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, newDecompressionError(err)
		}
		defer func() { _ = gr.Close() }()
		decoder = gr
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, newDecompressionError(err)
		}
		defer func() { _ = zr.Close() }()
		decoder = zr
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, newDecompressionError(err)
		}
		defer zr.Close()
		decoder = zr
	case "br":
		decoder = brotli.NewReader(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}

	body, err := io.ReadAll(decoder)
	if err != nil {
		return nil, newDecompressionError(err)
	}
	return body, nil
}

func newDecompressionError(err error) error {
	return fmt.Errorf("error decompressing response body: %w", err)
}

// JSON parses the body as JSON. With a selector, the body is evaluated as a
// gjson path; a missing path yields (nil, nil).
func (r *Response) JSON(selector ...string) (interface{}, error) {
	if len(selector) > 0 {
		if !gjson.Valid(r.Body) {
			return nil, fmt.Errorf("response body is not valid JSON")
		}
		result := gjson.Get(r.Body, selector[0])
		if !result.Exists() {
			return nil, nil
		}
		return result.Value(), nil
	}

	var v interface{}
	if err := json.Unmarshal([]byte(r.Body), &v); err != nil {
		return nil, fmt.Errorf("cannot parse json: %w", err)
	}
	return v, nil
}
