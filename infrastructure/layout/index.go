// Package layout is the client for the document layout detector, which locates
// labelled field regions on a captured document.
package layout

import (
	"context"
	"image"
	"image/draw"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/imageloader"
	"ekyc.io/infrastructure/network"
	"github.com/rotisserie/eris"
)

const collaborator = "layout_detector"

// Models served by the detector.
const (
	ModelIDFront  = "yemen_id_front"
	ModelIDBack   = "yemen_id_back"
	ModelPassport = "yemen_passport"
)

// MinConfidence drops weak detections.
const MinConfidence = 0.5

type FieldDetector interface {
	Detect(ctx context.Context, img image.Image, model string) ([]Region, error)
}

type Region struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        [4]int  `json:"box"`
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Box[0], r.Box[1], r.Box[2], r.Box[3])
}

type request struct {
	Image string `json:"image"`
	Model string `json:"model"`
}

type response struct {
	Regions []Region `json:"regions"`
	Error   *string  `json:"error"`
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

func (c *Client) Detect(ctx context.Context, img image.Image, model string) ([]Region, error) {
	if c == nil || !c.Network.Configured() {
		return nil, &apperrors.CollaboratorUnavailable{Collaborator: collaborator}
	}
	encoded, err := imageloader.EncodeBase64(img)
	if err != nil {
		return nil, eris.Wrap(err, "layout: encode image")
	}
	var result response
	if err := c.Network.Call(ctx, collaborator, "/detect", request{Image: encoded, Model: model}, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, &apperrors.CollaboratorUnavailable{Collaborator: collaborator, Err: eris.New(*result.Error)}
	}
	return result.Regions, nil
}

// Best keeps the most confident region per label, clipped to bounds. Regions
// under MinConfidence or empty after clipping are dropped.
func Best(regions []Region, bounds image.Rectangle) map[string]Region {
	out := map[string]Region{}
	for _, r := range regions {
		if r.Confidence < MinConfidence {
			continue
		}
		rect := r.Rect().Intersect(bounds)
		if rect.Empty() {
			continue
		}
		r.Box = [4]int{rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y}
		if prev, ok := out[r.Label]; !ok || r.Confidence > prev.Confidence {
			out[r.Label] = r
		}
	}
	return out
}

// Crop copies the region out of img with 5% padding on every side so edge
// characters survive recognition.
func Crop(img image.Image, r Region) image.Image {
	rect := r.Rect()
	padX, padY := rect.Dx()/20, rect.Dy()/20
	rect = image.Rect(rect.Min.X-padX, rect.Min.Y-padY, rect.Max.X+padX, rect.Max.Y+padY).Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}
