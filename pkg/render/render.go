// Package render is the client for the external PDF rendering service.
// Rendering is consumed, never embedded: a contract document goes out as JSON
// and a finished PDF comes back, or the call fails loudly with no partial
// output.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Template names understood by the rendering service.
const (
	TemplateContract       = "contract"
	TemplateSignedContract = "contract_signed"
)

// Renderer turns a contract document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, templateName string, data map[string]any) ([]byte, error)
}

// Error is returned when the rendering service rejects a render request. The
// enclosing operation must abort before any database write.
type Error struct {
	Template   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %q failed with status %d: %s", e.Template, e.StatusCode, e.Message)
}

// HTTPRenderer implements Renderer against the rendering service's HTTP API.
type HTTPRenderer struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewHTTPRenderer creates a renderer client for the given service base URL.
func NewHTTPRenderer(baseURL, apiToken string) *HTTPRenderer {
	return &HTTPRenderer{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Make sure we conform to the interface
var _ Renderer = (*HTTPRenderer)(nil)

// Render posts the document to the rendering service and returns the PDF bytes.
func (r *HTTPRenderer) Render(ctx context.Context, templateName string, data map[string]any) ([]byte, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal render payload: %w", err)
	}

	url := fmt.Sprintf("%s/render/%s", r.baseURL, templateName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create render request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call rendering service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{Template: templateName, StatusCode: resp.StatusCode, Message: string(msg)}
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered PDF: %w", err)
	}
	if len(pdf) == 0 {
		return nil, &Error{Template: templateName, StatusCode: resp.StatusCode, Message: "empty PDF body"}
	}

	return pdf, nil
}
