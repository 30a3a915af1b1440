package types

import (
	"context"
	"image"
)

// FaceEmbedder detects faces and returns one embedding per face.
type FaceEmbedder interface {
	Embed(ctx context.Context, img image.Image) ([]Face, error)
}

// Face is one detection. Box is x1, y1, x2, y2 in pixels.
type Face struct {
	Box       [4]int    `json:"box"`
	Score     float64   `json:"score"`
	Embedding []float64 `json:"embedding"`
}

func (f Face) Rect() image.Rectangle {
	return image.Rect(f.Box[0], f.Box[1], f.Box[2], f.Box[3])
}

type ImageRequest struct {
	Image string `json:"image"`
}

type EmbedResponse struct {
	Faces []Face  `json:"faces"`
	Error *string `json:"error"`
}

type SpoofResponse struct {
	SpoofProbability *float64 `json:"spoof_probability"`
	Error            *string  `json:"error"`
}

// FaceComparison is the outcome of matching the document portrait to the selfie.
type FaceComparison struct {
	Similarity        float64          `json:"similarity" bson:"similarity"`
	DocumentFaceFound bool             `json:"document_face_found" bson:"documentFaceFound"`
	SelfieFaceFound   bool             `json:"selfie_face_found" bson:"selfieFaceFound"`
	SelfieFace        *image.Rectangle `json:"-" bson:"-"`
	Error             *string          `json:"error,omitempty" bson:"error,omitempty"`
}
