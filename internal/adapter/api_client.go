// Package adapter contains infrastructure adapters for the revu CLI:
// filesystem access, the analysis service client and the result store.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	m "revu.dev/pkg/revu/internal/model"
)

// analyzeFieldName is the shared multipart field every submitted file is
// carried under. The per-part filename is the file's relative path, which
// is also the key results are joined back on.
const analyzeFieldName = "files"

// genericSubmitError is shown when the server gives no usable detail.
const genericSubmitError = "analysis request failed"

// ReviewClient talks to the analysis service.
type ReviewClient interface {
	// FetchSkipFolders retrieves the authoritative skip-folder list. An
	// empty list with a nil error means the server had nothing to say.
	FetchSkipFolders(ctx context.Context) ([]string, error)

	// Analyze submits the accepted files and returns per-file results.
	Analyze(ctx context.Context, files []m.CandidateFile) ([]m.AnalysisResult, error)
}

// APIError is a non-success response from the analysis service, carrying
// the human-readable detail message when the body provided one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}

	return fmt.Sprintf("%s (HTTP %d)", genericSubmitError, e.StatusCode)
}

// HTTPReviewClient implements ReviewClient over plain HTTP.
type HTTPReviewClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPReviewClient builds a client for the service at baseURL. A zero
// timeout means the request runs until the server answers or fails.
func NewHTTPReviewClient(baseURL string, timeout time.Duration) *HTTPReviewClient {
	return &HTTPReviewClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type scanConfigResponse struct {
	SkipFolders []string `json:"skip_folders"`
}

// FetchSkipFolders asks the server for its skip-folder list. Callers treat
// any error or empty list as "keep the built-in default".
func (c *HTTPReviewClient) FetchSkipFolders(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scan-config", nil)
	if err != nil {
		return nil, fmt.Errorf("build scan-config request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scan-config: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var body scanConfigResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode scan-config: %w", err)
	}

	return body.SkipFolders, nil
}

type analyzeResponse struct {
	Results []m.AnalysisResult `json:"results"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Analyze submits every file under the shared "files" field and decodes
// the per-file results. Non-success responses come back as *APIError with
// the server's detail message when one was present.
func (c *HTTPReviewClient) Analyze(ctx context.Context, files []m.CandidateFile) ([]m.AnalysisResult, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for _, file := range files {
		part, err := writer.CreateFormFile(analyzeFieldName, file.RelPath)
		if err != nil {
			return nil, fmt.Errorf("add %s to request: %w", file.RelPath, err)
		}

		if _, err := io.WriteString(part, file.Content); err != nil {
			return nil, fmt.Errorf("write %s to request: %w", file.RelPath, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", &buf)
	if err != nil {
		return nil, fmt.Errorf("build analyze request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	var body analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode analyze response: %w", err)
	}

	return body.Results, nil
}

// decodeAPIError extracts the detail message from an error body. An
// unparsable or detail-less body falls back to the generic message.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var body errorResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}

	apiErr.Detail = body.Detail

	return apiErr
}
