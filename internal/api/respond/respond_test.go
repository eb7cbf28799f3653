package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSONHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, []byte(`{"0":{}}`), `W/"abc"`, 10*time.Minute, CacheHit)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `W/"abc"`, rec.Header().Get("ETag"))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "public, max-age=600, stale-while-revalidate=300", rec.Header().Get("Cache-Control"))
	assert.Equal(t, `{"0":{}}`, rec.Body.String())
}

func TestWriteJSONStale(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, []byte(`{}`), `W/"abc"`, time.Hour, CacheStale)

	assert.Equal(t, "STALE", rec.Header().Get("X-Cache"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestWriteErrorDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorDetail(rec, http.StatusBadRequest, "INVALID_SEASON", "'abc' is an invalid season.", "season")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":"INVALID_SEASON","message":"'abc' is an invalid season.","detail":"season"}}`,
		rec.Body.String())
}

func TestWriteErrorOmitsEmptyDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
	assert.JSONEq(t, `{"error":{"code":"RATE_LIMITED","message":"Too many requests"}}`, rec.Body.String())
}

func TestWriteNotModified(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNotModified(rec, `W/"abc"`)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}
