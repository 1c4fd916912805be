package providers

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// postJSON sends payload to url and returns the body of a 200 response.
// Non-200 responses become *Error values classified by status code.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, failure(provider, "creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, failure(provider, "sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, failure(provider, "reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, statusError(provider, httpResp.StatusCode, respBody)
	}
	return respBody, nil
}
