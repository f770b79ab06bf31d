package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultNovaPoshtaURL = "https://api.novaposhta.ua/v2.0/json/"
	defaultTimeout       = 5 * time.Second
	maxResponseBytes     = 8 << 20
)

type NovaPoshtaClient struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewNovaPoshtaClient(url, apiKey string, timeout time.Duration) *NovaPoshtaClient {
	if url == "" {
		url = DefaultNovaPoshtaURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &NovaPoshtaClient{
		url:    url,
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

type npRequest struct {
	APIKey           string         `json:"apiKey"`
	ModelName        string         `json:"modelName"`
	CalledMethod     string         `json:"calledMethod"`
	MethodProperties map[string]any `json:"methodProperties"`
}

type npEntry struct {
	Description string `json:"Description"`
}

type npResponse struct {
	Success bool      `json:"success"`
	Data    []npEntry `json:"data"`
	Errors  []string  `json:"errors"`
}

func (c *NovaPoshtaClient) call(ctx context.Context, model, method string, props map[string]any) ([]string, error) {
	if props == nil {
		props = map[string]any{}
	}
	body, err := json.Marshal(npRequest{
		APIKey:           c.apiKey,
		ModelName:        model,
		CalledMethod:     method,
		MethodProperties: props,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nova poshta %s.%s: %w", model, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nova poshta %s.%s: unexpected status %d", model, method, resp.StatusCode)
	}

	var out npResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("nova poshta %s.%s: decode: %w", model, method, err)
	}
	if !out.Success {
		return nil, fmt.Errorf("nova poshta %s.%s: %s", model, method, strings.Join(out.Errors, "; "))
	}

	items := make([]string, 0, len(out.Data))
	for _, e := range out.Data {
		if d := strings.TrimSpace(e.Description); d != "" {
			items = append(items, d)
		}
	}
	return items, nil
}

func (c *NovaPoshtaClient) Cities(ctx context.Context) ([]string, error) {
	return c.call(ctx, "Address", "getCities", nil)
}

func (c *NovaPoshtaClient) Departments(ctx context.Context, city string) ([]string, error) {
	return c.call(ctx, "AddressGeneral", "getWarehouses", map[string]any{"CityName": city})
}
