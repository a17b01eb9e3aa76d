package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dochub/internal/logging"
)

const (
	loginPath   = "/auth/token/"
	refreshPath = "/auth/token/refresh/"
)

// credentialPaths отправляются без bearer токена и не запускают обновление
var credentialPaths = []string{loginPath, refreshPath}

// HTTPClient добавляет bearer токен к запросам и один раз обновляет
// access токен при ответе 401. Параллельные обновления не сериализуются.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  logging.Logger

	// OnSessionExpired вызывается, когда обновить токен не удалось
	OnSessionExpired func()
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenStore) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logging.New("http-client"),
	}
}

// NewRequest строит запрос к API; путь задается относительно базового адреса
func (c *HTTPClient) NewRequest(ctx context.Context, method, path string, body []byte, contentType string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do выполняет запрос. Ответ 401 на запрос с токеном приводит к одной попытке
// обновления и одному повтору; при неудаче токены удаляются и возвращается
// ошибка аутентификации.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	authorized := !isCredentialRequest(req) && c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !authorized {
		return resp, nil
	}
	drain(resp)

	access, err := c.refresh(req.Context())
	if err != nil {
		c.logger.Warnf("[Do] Token refresh failed for %s %s: %v", req.Method, req.URL.Path, err)
		c.expire()
		return nil, &APIError{Status: http.StatusUnauthorized, Detail: "Session expired, please log in again"}
	}

	retry := req.Clone(req.Context())
	if body != nil {
		retry.Body = io.NopCloser(bytes.NewReader(body))
		retry.ContentLength = int64(len(body))
	}
	retry.Header.Set("Authorization", "Bearer "+access)
	return c.http.Do(retry)
}

// DoJSON отправляет in как JSON (если не nil) и декодирует ответ в out
func (c *HTTPClient) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body, contentType = data, "application/json"
	}

	req, err := c.NewRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isCredentialRequest(req *http.Request) bool {
	for _, path := range credentialPaths {
		if strings.HasSuffix(req.URL.Path, path) {
			return true
		}
	}
	return false
}

func (c *HTTPClient) authorize(req *http.Request) bool {
	token, ok := c.tokens.Get(KeyToken)
	if !ok || token == "" {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return true
}

func (c *HTTPClient) refresh(ctx context.Context) (string, error) {
	refresh, ok := c.tokens.Get(KeyRefreshToken)
	if !ok || refresh == "" {
		return "", fmt.Errorf("no refresh token available")
	}

	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", err
	}
	req, err := c.NewRequest(ctx, http.MethodPost, refreshPath, payload, "application/json")
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var tokens AuthTokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if tokens.Access == "" {
		return "", fmt.Errorf("refresh response has no access token")
	}

	if err := c.tokens.Set(KeyToken, tokens.Access); err != nil {
		return "", err
	}
	return tokens.Access, nil
}

func (c *HTTPClient) expire() {
	if err := c.tokens.Delete(sessionKeys...); err != nil {
		c.logger.Errorf("[Expire] Failed to clear tokens: %v", err)
	}
	if c.OnSessionExpired != nil {
		c.OnSessionExpired()
	}
}

func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(data))
	}
	return apiErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
