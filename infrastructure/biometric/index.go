package biometric

import (
	"time"

	"ekyc.io/infrastructure/network"
)

// NewFaceService builds the face model client. An empty baseURL leaves the
// collaborator unavailable and every dependent check is skipped.
func NewFaceService(baseURL string, apiKey string, timeout time.Duration) *FaceService {
	headers := map[string]string{}
	if apiKey != "" {
		headers["X-Api-Key"] = apiKey
	}
	return &FaceService{
		Network: network.NewController(baseURL, headers, timeout),
	}
}
