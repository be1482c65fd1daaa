package optimize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ServiceClient talks to the optimizer over HTTP
type ServiceClient struct {
	BaseURL string
	Client  *http.Client
}

func NewServiceClient(baseURL string, timeout time.Duration) *ServiceClient {
	return &ServiceClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *ServiceClient) Optimize(ctx context.Context, request Request) (*Result, error) {
	if s.BaseURL == "" {
		return nil, &ServiceError{Code: CodeNotConfigured}
	}

	requestBytes, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/optimize", bytes.NewReader(requestBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("optimize request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read optimize response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorBody errorResponse
		if err := json.Unmarshal(body, &errorBody); err != nil {
			log.Debug().Err(err).Int("status", resp.StatusCode).Msg("Could not decode optimizer error body")
		}

		return nil, &ServiceError{
			Code:   errorBody.Code,
			Detail: errorBody.Error,
			Err:    fmt.Errorf("optimizer returned %d", resp.StatusCode),
		}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode optimize response: %w", err)
	}

	return &result, nil
}
