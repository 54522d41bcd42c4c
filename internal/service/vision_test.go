package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVisionClient(t *testing.T, handler http.Handler) *VisionClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_API_URL", srv.URL)
	t.Setenv("GEMINI_MODEL", "test-model")

	client, err := NewVisionClient()
	require.NoError(t, err)
	return client
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake jpeg bytes"), 0o600))
	return path
}

func TestNewVisionClientRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY_FILE", "")

	_, err := NewVisionClient()
	assert.Error(t, err)
}

func TestNewVisionClientReadsKeyFile(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(keyFile, []byte("  file-key \n"), 0o600))

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY_FILE", keyFile)

	client, err := NewVisionClient()
	require.NoError(t, err)
	assert.Equal(t, "file-key", client.apiKey)
}

func TestUploadImage(t *testing.T) {
	var gotPath, gotProtocol, gotContentType string
	var gotBody []byte

	client := newTestVisionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotProtocol = r.Header.Get("X-Goog-Upload-Protocol")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"file": map[string]string{"uri": "files/abc-123"},
		})
	}))

	uri, err := client.UploadImage(context.Background(), writeTestImage(t), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "files/abc-123", uri)
	assert.Equal(t, "/upload/v1beta/files", gotPath)
	assert.Equal(t, "raw", gotProtocol)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, []byte("fake jpeg bytes"), gotBody)
}

func TestUploadImageErrorStatus(t *testing.T) {
	client := newTestVisionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))

	_, err := client.UploadImage(context.Background(), writeTestImage(t), "image/jpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestUploadImageMissingFile(t *testing.T) {
	client := newTestVisionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be reached")
	}))

	_, err := client.UploadImage(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), "image/jpeg")
	assert.Error(t, err)
}

func TestGenerateJSON(t *testing.T) {
	var gotPath string
	var gotReq map[string]interface{}

	client := newTestVisionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": `{"title":"ok"}`}},
				}},
			},
		})
	}))

	schema := map[string]interface{}{"title": "free_recipe", "type": "object"}
	text, err := client.GenerateJSON(context.Background(), "the prompt", "files/abc-123", "image/jpeg", schema)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"ok"}`, text)

	assert.Equal(t, "/v1beta/models/test-model:generateContent", gotPath)

	genCfg, ok := gotReq["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.Equal(t, "free_recipe", genCfg["responseSchema"].(map[string]interface{})["title"])

	contents := gotReq["contents"].([]interface{})
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	fileData := parts[0].(map[string]interface{})["fileData"].(map[string]interface{})
	assert.Equal(t, "files/abc-123", fileData["fileUri"])
	assert.Equal(t, "the prompt", parts[1].(map[string]interface{})["text"])
}

func TestGenerateJSONNoCandidates(t *testing.T) {
	client := newTestVisionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))

	_, err := client.GenerateJSON(context.Background(), "p", "files/x", "image/jpeg", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateJSONErrorStatus(t *testing.T) {
	client := newTestVisionClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))

	_, err := client.GenerateJSON(context.Background(), "p", "files/x", "image/jpeg", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
