package extend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// newRequest creates a new HTTP request against the API.
// path is relative to the base URL; body, when set, is sent as JSON.
func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	params url.Values,
	body any,
) (*http.Request, error) {
	u, err := c.resolve(path, params)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req)

	return req, nil
}

// newMultipartRequest creates a multipart/form-data POST with the given
// fields and a single file part.
func (c *Client) newMultipartRequest(
	ctx context.Context,
	path string,
	fields map[string]string,
	fileField, fileName string,
	file io.Reader,
) (*http.Request, error) {
	u, err := c.resolve(path, nil)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	part, err := mw.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setHeaders(req)

	return req, nil
}

// resolve joins path and query onto the base URL.
func (c *Client) resolve(path string, params url.Values) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}

	base := *c.baseURL
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
		if base.RawPath != "" {
			base.RawPath += "/"
		}
	}

	u := base.ResolveReference(rel)
	u.RawQuery = params.Encode()

	return u, nil
}

// setHeaders attaches authentication and versioning headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-extend-api-key", c.apiKey)
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", APIVersion)
	req.Header.Set("User-Agent", c.userAgent)
}

// doJSON executes the request and decodes the JSON response into v.
func (c *Client) doJSON(req *http.Request, v any) (*http.Response, error) {
	resp, body, err := c.do(req)
	if err != nil {
		return resp, err
	}

	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			return resp, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, ErrDecode, err)
		}
	}

	return resp, nil
}

// do executes the request once and returns the response with its body read.
// Non-2xx responses are returned as [*APIError].
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()
	log := c.logger.With(
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		log.Debug("request failed", zap.Duration("duration", time.Since(start)), zap.Error(err))

		return nil, nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug("read response failed", zap.Int("status", resp.StatusCode), zap.Error(err))

		return resp, nil, fmt.Errorf("%s %s: read response: %w: %w", req.Method, req.URL.Path, ErrTransport, err)
	}

	log.Debug("request done",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, body, newAPIError(resp, body)
	}

	return resp, body, nil
}
