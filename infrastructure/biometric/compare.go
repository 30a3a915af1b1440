package biometric

import (
	"context"
	"image"

	"ekyc.io/application/utils"
	"ekyc.io/infrastructure/biometric/types"
	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity maps cosine similarity from [-1, 1] onto [0, 1]. Mismatched or
// zero-length embeddings score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return utils.Clamp01((floats.Dot(a, b)/(na*nb) + 1) / 2)
}

// largest picks the face with the biggest box.
func largest(faces []types.Face) *types.Face {
	var best *types.Face
	for i := range faces {
		if best == nil || area(faces[i].Rect()) > area(best.Rect()) {
			best = &faces[i]
		}
	}
	return best
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// CompareFaces embeds both images and compares their largest faces. A missing
// face is reported in the result with similarity 0; only collaborator failures
// are errors.
func CompareFaces(ctx context.Context, embedder types.FaceEmbedder, document image.Image, selfie image.Image) (types.FaceComparison, error) {
	result := types.FaceComparison{}
	docFaces, err := embedder.Embed(ctx, document)
	if err != nil {
		return result, err
	}
	selfieFaces, err := embedder.Embed(ctx, selfie)
	if err != nil {
		return result, err
	}
	docFace, selfieFace := largest(docFaces), largest(selfieFaces)
	result.DocumentFaceFound = docFace != nil
	result.SelfieFaceFound = selfieFace != nil
	if selfieFace != nil {
		rect := selfieFace.Rect().Intersect(selfie.Bounds())
		result.SelfieFace = &rect
	}
	switch {
	case docFace == nil:
		result.Error = utils.GetStringPointer("no face detected on the document")
	case selfieFace == nil:
		result.Error = utils.GetStringPointer("no face detected in the selfie")
	default:
		result.Similarity = utils.Round(CosineSimilarity(docFace.Embedding, selfieFace.Embedding), 4)
	}
	return result, nil
}
