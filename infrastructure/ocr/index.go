// Package ocr is the client for the text recognition service.
package ocr

import (
	"context"
	"image"
	"regexp"
	"strings"
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/utils"
	"ekyc.io/infrastructure/imageloader"
	"ekyc.io/infrastructure/network"
	"github.com/rotisserie/eris"
)

const collaborator = "ocr"

// Languages understood by the recognition service.
const (
	Arabic  = "ar"
	English = "en"
)

type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image, languages []string) ([]Line, error)
}

// Line is one recognised line of text. Box is x1, y1, x2, y2.
type Line struct {
	Text       string  `json:"text" bson:"text"`
	Confidence float64 `json:"confidence" bson:"confidence"`
	Box        [4]int  `json:"box" bson:"box"`
	Label      string  `json:"label,omitempty" bson:"label,omitempty"`
}

type request struct {
	Image     string   `json:"image"`
	Languages []string `json:"languages"`
}

type response struct {
	Lines []Line  `json:"lines"`
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

func (c *Client) Recognize(ctx context.Context, img image.Image, languages []string) ([]Line, error) {
	if c == nil || !c.Network.Configured() {
		return nil, &apperrors.CollaboratorUnavailable{Collaborator: collaborator}
	}
	encoded, err := imageloader.EncodeBase64(img)
	if err != nil {
		return nil, eris.Wrap(err, "ocr: encode image")
	}
	var result response
	if err := c.Network.Call(ctx, collaborator, "/recognize", request{Image: encoded, Languages: languages}, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, &apperrors.CollaboratorUnavailable{Collaborator: collaborator, Err: eris.New(*result.Error)}
	}
	return result.Lines, nil
}

// MeanConfidence averages the non-zero line confidences; no confident line gives 0.
func MeanConfidence(lines []Line) float64 {
	sum, n := 0.0, 0
	for _, l := range lines {
		if l.Confidence > 0 {
			sum += l.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return utils.Round(utils.Clamp01(sum/float64(n)), 4)
}

// Join concatenates the non-blank line texts with single spaces.
func Join(lines []Line) string {
	parts := []string{}
	for _, l := range lines {
		if t := strings.TrimSpace(l.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

var (
	nonDigits = regexp.MustCompile(`[^0-9]`)
	arabicRun = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)
)

// Digits strips everything but ASCII digits.
func Digits(text string) string {
	return nonDigits.ReplaceAllString(text, "")
}

// HasArabic reports at least two Arabic letters, which filters stray marks.
func HasArabic(text string) bool {
	return len(arabicRun.FindAllString(text, 2)) >= 2
}

// FindIDNumber looks for the longest run of 8 to 15 digits, preferring the
// 11-digit national format.
func FindIDNumber(lines []Line) *string {
	var best string
	for _, l := range lines {
		d := Digits(l.Text)
		if len(d) < 8 || len(d) > 15 {
			continue
		}
		if len(d) == 11 {
			return &d
		}
		if len(d) > len(best) {
			best = d
		}
	}
	if best == "" {
		return nil
	}
	return &best
}
