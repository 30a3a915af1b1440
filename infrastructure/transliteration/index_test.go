package transliteration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/application/namematch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ namematch.Transliterator = (*Client)(nil)

func TestToLatin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"Mohammed Ali"}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, "", 0).ToLatin(context.Background(), "محمد علي")
	require.NoError(t, err)
	assert.Equal(t, "Mohammed Ali", out)
}

func TestToLatinEmptyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"  "}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 0).ToLatin(context.Background(), "محمد")
	assert.True(t, apperrors.IsCollaboratorUnavailable(err))
}
