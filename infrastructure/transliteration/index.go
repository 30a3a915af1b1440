// Package transliteration is the client for the Arabic to Latin name service.
package transliteration

import (
	"context"
	"strings"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/network"
	"github.com/rotisserie/eris"
)

const collaborator = "transliterator"

type request struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type response struct {
	Text  string  `json:"text"`
	Error *string `json:"error"`
}

type Client struct {
	Network *network.NetworkController
}

func NewClient(baseURL string, apiKey string, timeout time.Duration) *Client {
	headers := map[string]string{}
	if apiKey != "" {
		headers["X-Api-Key"] = apiKey
	}
	return &Client{Network: network.NewController(baseURL, headers, timeout)}
}

func (c *Client) ToLatin(ctx context.Context, arabic string) (string, error) {
	if c == nil || !c.Network.Configured() {
		return "", &apperrors.CollaboratorUnavailable{Collaborator: collaborator}
	}
	var result response
	if err := c.Network.Call(ctx, collaborator, "/transliterate", request{Text: arabic, Source: "ar", Target: "en"}, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", &apperrors.CollaboratorUnavailable{Collaborator: collaborator, Err: eris.New(*result.Error)}
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", &apperrors.CollaboratorUnavailable{Collaborator: collaborator, Err: eris.New("empty transliteration")}
	}
	return result.Text, nil
}
