package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/huson-app/huson/internal/core/domain"
	"github.com/huson-app/huson/internal/infrastructure/resilience"
)

const (
	DefaultTimeout = 30 * time.Second
	operation      = "classifier.classify"
)

// Client calls the remote classification function with a base64 image
// data URI and returns its structured verdict.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	APIKey   string
	Timeout  time.Duration
	Executor *resilience.Executor
}

func New(url string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        strings.TrimSpace(url),
		apiKey:     strings.TrimSpace(options.APIKey),
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
	}
}

type classifyRequest struct {
	Image string `json:"image"`
}

type classifyResponse struct {
	Classification string   `json:"classification"`
	FreshnessScore *float64 `json:"freshness_score"`
	ConditionScore *float64 `json:"condition_score"`
	Confidence     *float64 `json:"confidence"`
	Error          string   `json:"error"`
}

func (c *Client) ClassifyImage(ctx context.Context, dataURI string) (domain.ClassificationResult, error) {
	if c.url == "" {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrUpstream, operation, errors.New("classifier url is not configured"))
	}

	var response classifyResponse
	call := func(ctx context.Context) error {
		response = classifyResponse{}
		return c.postJSON(ctx, classifyRequest{Image: dataURI}, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyRemoteError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.ClassificationResult{}, toDomainError(err)
	}

	if response.Error != "" {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrUpstream, operation, errors.New(response.Error))
	}
	if response.Confidence == nil {
		return domain.ClassificationResult{}, domain.WrapError(domain.ErrUpstream, operation, errors.New("response without confidence"))
	}
	return domain.ClassificationResult{
		Classification: strings.TrimSpace(response.Classification),
		FreshnessScore: response.FreshnessScore,
		ConditionScore: response.ConditionScore,
		Confidence:     *response.Confidence,
	}, nil
}

func decodeResponse(resp *http.Response, out *classifyResponse) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode classifier response: %w", err)
	}
	return nil
}
