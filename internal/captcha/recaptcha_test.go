package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteverify(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		resp := Response{Success: r.PostForm.Get("response") == "good-token"}
		if !resp.Success {
			resp.ErrorCodes = []string{"invalid-input-response"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify(t *testing.T) {
	srv := siteverify(t)
	v := New("s3cret", srv.URL)
	require.True(t, v.Enabled())

	res, err := v.Verify(context.Background(), "good-token", "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, ResultPass, res)

	res, err = v.Verify(context.Background(), "bad-token", "")
	require.NoError(t, err)
	assert.Equal(t, ResultFail, res)

	res, _ = v.Verify(context.Background(), "", "")
	assert.Equal(t, ResultFail, res)
}

func TestVerifySkippedWithoutSecret(t *testing.T) {
	v := New("", "http://127.0.0.1:1/never-called")
	res, err := v.Verify(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.Equal(t, ResultSkipped, res)
}

func TestVerifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	res, err := New("s3cret", srv.URL).Verify(context.Background(), "tok", "")
	assert.Error(t, err)
	assert.Equal(t, ResultError, res)
}
