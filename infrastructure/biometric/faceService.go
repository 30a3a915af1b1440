package biometric

import (
	"context"
	"image"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/biometric/types"
	"ekyc.io/infrastructure/imageloader"
	"ekyc.io/infrastructure/network"
	"github.com/rotisserie/eris"
)

const (
	embedderName  = "face_embedder"
	antispoofName = "spoof_classifier"
	embedPath     = "/embed"
	antispoofPath = "/antispoof"
)

// FaceService is the HTTP client for the face model service. It serves as the
// embedder, the document face locator and the optional spoof classifier.
type FaceService struct {
	Network *network.NetworkController
}

func (f *FaceService) post(ctx context.Context, collaborator string, path string, img image.Image, out interface{}) error {
	if f == nil || !f.Network.Configured() {
		return &apperrors.CollaboratorUnavailable{Collaborator: collaborator}
	}
	encoded, err := imageloader.EncodeBase64(img)
	if err != nil {
		return eris.Wrap(err, "biometric: encode image")
	}
	return f.Network.Call(ctx, collaborator, path, types.ImageRequest{Image: encoded}, out)
}

func (f *FaceService) Embed(ctx context.Context, img image.Image) ([]types.Face, error) {
	var result types.EmbedResponse
	if err := f.post(ctx, embedderName, embedPath, img, &result); err != nil {
		return nil, err
	}
	if result.Error != nil {
		return nil, &apperrors.CollaboratorUnavailable{Collaborator: embedderName, Err: eris.New(*result.Error)}
	}
	return result.Faces, nil
}

// DetectFaces returns the boxes of every face the embedder finds.
func (f *FaceService) DetectFaces(ctx context.Context, img image.Image) ([]image.Rectangle, error) {
	faces, err := f.Embed(ctx, img)
	if err != nil {
		return nil, err
	}
	boxes := make([]image.Rectangle, 0, len(faces))
	for _, face := range faces {
		boxes = append(boxes, face.Rect().Intersect(img.Bounds()))
	}
	return boxes, nil
}

func (f *FaceService) SpoofProbability(ctx context.Context, img image.Image) (float64, error) {
	var result types.SpoofResponse
	if err := f.post(ctx, antispoofName, antispoofPath, img, &result); err != nil {
		return 0, err
	}
	if result.Error != nil || result.SpoofProbability == nil {
		return 0, &apperrors.CollaboratorUnavailable{Collaborator: antispoofName, Err: eris.New("no spoof probability returned")}
	}
	return *result.SpoofProbability, nil
}
