// Package aisvc wraps Google's Generative Language REST API. Everything here
// is advisory: callers must tolerate failures and fall back to their own
// values.
package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(conf.AI.BaseURL, "/"),
		apiKey:     conf.AI.APIKey,
		model:      conf.AI.Model,
		maxTokens:  conf.AI.MaxTokens,
		httpClient: &http.Client{Timeout: conf.AI.Timeout},
	}
}

type (
	generateRequest struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	part struct {
		Text string `json:"text"`
	}

	generationConfig struct {
		MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
	}

	generateResponse struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
)

// generate sends the prompt and returns the model's raw text response.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{MaxOutputTokens: c.maxTokens},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", errors.Wrap(err, "encoding model request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", errors.Wrap(err, "creating model request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling model")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading model response")
	}

	var resp generateResponse
	if err = json.Unmarshal(raw, &resp); err != nil {
		return "", errors.Wrap(err, "decoding model response")
	}
	if res.StatusCode != http.StatusOK {
		if resp.Error != nil {
			return "", errors.Errorf("model error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return "", errors.Errorf("model error: status %d", res.StatusCode)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("model returned no candidates")
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// generateJSON parses the model's text output into out. Markdown code fences
// around the JSON are tolerated; anything else malformed is the caller's
// parse error.
func (c *Client) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return err
	}
	if err = json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		return errors.Wrap(err, "parsing model output")
	}
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
