package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/logger"
	"github.com/rotisserie/eris"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 32 << 20
)

// NetworkController is a thin JSON client for one collaborator service.
type NetworkController struct {
	BaseUrl string
	// Headers are sent on every request, e.g. an API key.
	Headers map[string]string
	// MaxRetries applies to transport errors and 5xx responses.
	MaxRetries int
	Backoff    time.Duration
	Client     *http.Client
}

func (n *NetworkController) client() *http.Client {
	if n.Client != nil {
		return n.Client
	}
	return &http.Client{Timeout: defaultTimeout}
}

func (n *NetworkController) Configured() bool {
	return n != nil && n.BaseUrl != ""
}

func (n *NetworkController) Get(ctx context.Context, path string, headers *map[string]string, params *map[string]string) (*[]byte, *int, error) {
	return n.do(ctx, http.MethodGet, path, headers, nil, params)
}

// Post JSON-encodes body and returns the raw response with its status code. A
// non-2xx status is not an error; callers decide what it means.
func (n *NetworkController) Post(ctx context.Context, path string, headers *map[string]string, body interface{}, params *map[string]string) (*[]byte, *int, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "network: encode body for %s", path)
		}
		payload = encoded
	}
	return n.do(ctx, http.MethodPost, path, headers, payload, params)
}

func (n *NetworkController) buildURL(path string, params *map[string]string) (string, error) {
	u, err := url.Parse(strings.TrimRight(n.BaseUrl, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", eris.Wrapf(err, "network: parse url for %s", path)
	}
	if params != nil {
		q := u.Query()
		for k, v := range *params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (n *NetworkController) do(ctx context.Context, method string, path string, headers *map[string]string, payload []byte, params *map[string]string) (*[]byte, *int, error) {
	if !n.Configured() {
		return nil, nil, eris.New("network: base url not configured")
	}
	target, err := n.buildURL(path, params)
	if err != nil {
		return nil, nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= n.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, eris.Wrapf(ctx.Err(), "network: %s %s", method, path)
			case <-time.After(n.Backoff * time.Duration(attempt)):
			}
		}
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "network: build %s %s", method, path)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range n.Headers {
			req.Header.Set(k, v)
		}
		if headers != nil {
			for k, v := range *headers {
				req.Header.Set(k, v)
			}
		}

		res, err := n.client().Do(req)
		if err != nil {
			lastErr = eris.Wrapf(err, "network: %s %s", method, path)
			logger.Warning("collaborator request failed", logger.LoggerOptions{
				Key:  "url",
				Data: target,
			}, logger.LoggerOptions{
				Key:  "attempt",
				Data: attempt + 1,
			})
			if ctx.Err() != nil {
				break
			}
			continue
		}
		body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
		res.Body.Close()
		if err != nil {
			lastErr = eris.Wrapf(err, "network: read %s %s", method, path)
			continue
		}
		status := res.StatusCode
		if status >= 500 && attempt < n.MaxRetries {
			lastErr = eris.Errorf("network: %s %s returned %d", method, path, status)
			continue
		}
		return &body, &status, nil
	}
	return nil, nil, lastErr
}

// NewController builds a client with two retries on transport errors and 5xx.
func NewController(baseURL string, headers map[string]string, timeout time.Duration) *NetworkController {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &NetworkController{
		BaseUrl:    baseURL,
		Headers:    headers,
		MaxRetries: 2,
		Backoff:    200 * time.Millisecond,
		Client:     &http.Client{Timeout: timeout},
	}
}

// Call posts body to a collaborator and decodes a 200 response into out. Every
// failure, including an unconfigured client, is a CollaboratorUnavailable.
func (n *NetworkController) Call(ctx context.Context, collaborator string, path string, body interface{}, out interface{}) error {
	if !n.Configured() {
		return &apperrors.CollaboratorUnavailable{Collaborator: collaborator}
	}
	response, statusCode, err := n.Post(ctx, path, &map[string]string{}, body, nil)
	if err != nil {
		logger.Error(fmt.Sprintf("error calling %s", collaborator), logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return &apperrors.CollaboratorUnavailable{Collaborator: collaborator, Err: err}
	}
	if code := *statusCode; code != http.StatusOK {
		logger.Error(fmt.Sprintf("%s failed with status code", collaborator), logger.LoggerOptions{
			Key:  "status_code",
			Data: code,
		})
		return &apperrors.CollaboratorUnavailable{Collaborator: collaborator, Err: eris.Errorf("status %d", code)}
	}
	if err := json.Unmarshal(*response, out); err != nil {
		return &apperrors.CollaboratorUnavailable{Collaborator: collaborator, Err: eris.Wrap(err, "decode response")}
	}
	return nil
}
