package layout

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestKeepsMostConfidentPerLabel(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 60)
	best := Best([]Region{
		{Label: "name", Confidence: 0.6, Box: [4]int{0, 0, 50, 10}},
		{Label: "name", Confidence: 0.9, Box: [4]int{10, 10, 90, 20}},
		{Label: "DOB", Confidence: 0.4, Box: [4]int{0, 30, 40, 40}},
		{Label: "POB", Confidence: 0.8, Box: [4]int{80, 50, 140, 70}},
		{Label: "unique_id", Confidence: 0.8, Box: [4]int{200, 200, 220, 210}},
	}, bounds)

	require.Len(t, best, 2)
	assert.Equal(t, 0.9, best["name"].Confidence)
	assert.Equal(t, [4]int{80, 50, 100, 60}, best["POB"].Box)
}

func TestCropPads(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	img.Set(38, 18, color.RGBA{R: 255, A: 255})
	crop := Crop(img, Region{Box: [4]int{40, 20, 140, 60}})
	assert.Equal(t, image.Rect(0, 0, 110, 44), crop.Bounds())
	r, _, _, _ := crop.At(3, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestClientDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect", r.URL.Path)
		w.Write([]byte(`{"regions":[{"label":"unique_id","confidence":0.97,"box":[1,1,30,9]}]}`))
	}))
	defer srv.Close()

	regions, err := NewClient(srv.URL, "", 0).Detect(context.Background(), image.NewGray(image.Rect(0, 0, 32, 16)), ModelIDFront)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, image.Rect(1, 1, 30, 9), regions[0].Rect())
}
