// Package perspective is a client for the Perspective API comment analyzer,
// used as the toxicity scoring oracle.
package perspective

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/utils/safe"
)

// DefaultBaseURL is the production Perspective API endpoint
const DefaultBaseURL = "https://commentanalyzer.googleapis.com/v1alpha1"

// requestedAttributes is the fixed attribute set scored for every message
var requestedAttributes = []string{
	model.AttrSevereToxicity,
	model.AttrProfanity,
	model.AttrIdentityAttack,
	model.AttrThreat,
	model.AttrThreatExperimental,
	model.AttrToxicity,
	model.AttrFlirtation,
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.ScoreClient = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithBaseURL overrides the API endpoint (used in tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Perspective API client
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("Perspective API key is required")
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type analyzeRequest struct {
	Comment             comment                  `json:"comment"`
	Languages           []string                 `json:"languages"`
	RequestedAttributes map[string]struct{}      `json:"requestedAttributes"`
	DoNotStore          bool                     `json:"doNotStore"`
}

type comment struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

// Analyze scores the text and returns the attribute score mapping
func (c *Client) Analyze(ctx context.Context, text string) (model.Scores, error) {
	attrs := make(map[string]struct{}, len(requestedAttributes))
	for _, attr := range requestedAttributes {
		attrs[attr] = struct{}{}
	}

	body, err := json.Marshal(analyzeRequest{
		Comment:             comment{Text: text},
		Languages:           []string{"en"},
		RequestedAttributes: attrs,
		DoNotStore:          true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal analyze request")
	}

	url := c.baseURL + "/comments:analyze?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build analyze request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call comment analyzer")
	}
	defer safe.Close(ctx, resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read analyze response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("comment analyzer returned non-OK status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(data)),
		)
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse analyze response")
	}

	scores := make(model.Scores, len(parsed.AttributeScores))
	for attr, v := range parsed.AttributeScores {
		scores[attr] = v.SummaryScore.Value
	}

	return scores, nil
}
