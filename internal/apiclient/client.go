package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single upstream request when none is configured.
const DefaultTimeout = 15 * time.Second

const maxBodyBytes = 16 << 20

// CredentialSource exposes the bearer token to attach. An empty token means no header.
type CredentialSource interface {
	Token() string
}

// Recorder receives one observation per upstream call.
type Recorder interface {
	RecordUpstream(method, path string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials CredentialSource
	Logger      *zap.Logger
	Recorder    Recorder
	HTTPClient  *http.Client
}

// Client talks to the remote REST API. It never retries.
type Client struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	creds    CredentialSource
	logger   *zap.Logger
	recorder Recorder
}

// New builds a Client.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		timeout:  timeout,
		http:     httpClient,
		creds:    opts.Credentials,
		logger:   logger,
		recorder: opts.Recorder,
	}
}

type credentialsKey struct{}

// WithCredentials scopes the credential used by calls made with ctx.
// It takes precedence over the client's default source.
func WithCredentials(ctx context.Context, src CredentialSource) context.Context {
	return context.WithValue(ctx, credentialsKey{}, src)
}

// CredentialsFrom returns the source attached by WithCredentials.
func CredentialsFrom(ctx context.Context) (CredentialSource, bool) {
	src, ok := ctx.Value(credentialsKey{}).(CredentialSource)
	return src, ok && src != nil
}

func (c *Client) credentials(ctx context.Context) CredentialSource {
	if src, ok := CredentialsFrom(ctx); ok {
		return src
	}
	return c.creds
}

// FormField is a text part of a multipart submission.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a binary part of a multipart submission.
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is a multipart/form-data body. Parts are written in order.
type Form struct {
	Fields []FormField
	Files  []FormFile
}

// Add appends a text field.
func (f *Form) Add(name, value string) {
	f.Fields = append(f.Fields, FormField{Name: name, Value: value})
}

// Attach appends a file part.
func (f *Form) Attach(file FormFile) {
	f.Files = append(f.Files, file)
}

// Request describes one call. Body and Form are mutually exclusive; Form wins.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   *Form
}

// Get issues a GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) (any, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Submit sends a multipart form with the given method.
func (c *Client) Submit(ctx context.Context, method, path string, form *Form) (any, error) {
	return c.Do(ctx, Request{Method: method, Path: path, Form: form})
}

// Do performs the request and decodes the JSON response into a generic value.
// An empty 2xx body decodes to nil. Every failure is returned as *Error.
func (c *Client) Do(ctx context.Context, req Request) (any, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	path := strings.TrimLeft(req.Path, "/")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Message: "unable to encode request", Err: err}
	}

	target := c.baseURL + "/" + path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Message: "unable to build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if src := c.credentials(ctx); src != nil {
		if token := src.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(method, path, 0, start)
		apiErr := &Error{Method: method, Path: path, Message: "service unavailable", Err: err}
		if isTimeout(err) {
			apiErr.timeout = true
			apiErr.Message = "request timed out"
		}
		c.logger.Warn("upstream request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, apiErr
	}
	defer resp.Body.Close()
	c.observe(method, path, resp.StatusCode, start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Message: "unable to read response", Err: err, timeout: isTimeout(err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, reported := messageFrom(raw, resp.StatusCode)
		apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode, Message: msg, reported: reported}
		c.logger.Warn("upstream rejected request",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	c.logger.Debug("upstream request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Message: "malformed response from server", Err: err}
	}
	return out, nil
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.recorder != nil {
		c.recorder.RecordUpstream(method, path, status, time.Since(start))
	}
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Form != nil {
		return encodeForm(req.Form)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(payload), "application/json", nil
}

func encodeForm(form *Form) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range form.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range form.Files {
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
		header.Set("Content-Type", ct)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
