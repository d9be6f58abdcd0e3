package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/giovaniif/motorent/infra"
	"github.com/tidwall/gjson"
)

var ErrAssistantResponse = errors.New("unexpected assistant response")

const (
	chatFlow     = "aiChatSupportFlow"
	locationFlow = "locationSuggestionsFlow"
)

// AssistantHttp calls prompt flows served over HTTP. Each flow takes
// {"data": input} and answers {"result": output}.
type AssistantHttp struct {
	httpClient *http.Client
	baseUrl    string
}

func NewAssistantHttp(httpClient *http.Client, baseUrl string) *AssistantHttp {
	return &AssistantHttp{httpClient: httpClient, baseUrl: strings.TrimRight(baseUrl, "/")}
}

func (a *AssistantHttp) Answer(ctx context.Context, query string) (string, error) {
	body, err := a.run(ctx, chatFlow, map[string]string{"query": query})
	if err != nil {
		return "", err
	}
	answer := gjson.Get(body, "result.answer")
	if !answer.Exists() {
		return "", fmt.Errorf("%w: %s has no answer", ErrAssistantResponse, chatFlow)
	}
	return answer.String(), nil
}

func (a *AssistantHttp) SuggestLocations(ctx context.Context, userLocation string) ([]string, error) {
	body, err := a.run(ctx, locationFlow, map[string]string{"userLocation": userLocation})
	if err != nil {
		return nil, err
	}
	result := gjson.Get(body, "result.suggestions")
	if !result.IsArray() {
		return nil, fmt.Errorf("%w: %s has no suggestions", ErrAssistantResponse, locationFlow)
	}
	suggestions := make([]string, 0)
	for _, s := range result.Array() {
		if v := strings.TrimSpace(s.String()); v != "" {
			suggestions = append(suggestions, v)
		}
	}
	return suggestions, nil
}

func (a *AssistantHttp) run(ctx context.Context, flow string, input any) (string, error) {
	payload, err := json.Marshal(map[string]any{"data": input})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseUrl+"/"+flow, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", infra.FromTransport(flow, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", infra.FromTransport(flow, err)
	}
	if err := infra.FromStatus(flow, resp.StatusCode); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %d", ErrAssistantResponse, flow, resp.StatusCode)
	}
	body := string(raw)
	if !gjson.Valid(body) {
		return "", fmt.Errorf("%w: %s returned invalid json", ErrAssistantResponse, flow)
	}
	return body, nil
}
