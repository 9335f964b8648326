package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/search"
	"github.com/spec-kit/support-crm/internal/service"
	"github.com/spec-kit/support-crm/internal/storage"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// newTestApp renders DomainErrors the way the HTTP error middleware does.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}})
		},
	})
}

type stubEmbedder struct {
	vector []float32
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}
	return e.vector, nil
}

type stubIndex struct {
	results []search.Result
}

func (i *stubIndex) Upsert(context.Context, search.Document) error { return nil }

func (i *stubIndex) Remove(context.Context, search.SourceKind, string) error { return nil }

func (i *stubIndex) Query(context.Context, []float32, int) ([]search.Result, error) {
	return i.results, nil
}

func TestGenerateEmbeddingEndpoint(t *testing.T) {
	app := newTestApp()
	chatService := service.NewChatService(&stubEmbedder{vector: []float32{0.1, 0.2, 0.3}}, &stubIndex{}, 5)
	handler := NewChatHandler(chatService, &stubEmbedder{vector: []float32{0.1, 0.2, 0.3}})
	app.Post("/api/chat/generate-embedding", handler.GenerateEmbedding)

	t.Run("returns vector", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"text": "how do I export my data"})
		req := httptest.NewRequest("POST", "/api/chat/generate-embedding", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var out struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out.Embedding) != 3 {
			t.Fatalf("embedding = %v, want 3 dimensions", out.Embedding)
		}
	})

	t.Run("empty text answers 400", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"text": "   "})
		req := httptest.NewRequest("POST", "/api/chat/generate-embedding", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestChatAssembleEndpoint(t *testing.T) {
	app := newTestApp()
	chatService := service.NewChatService(&stubEmbedder{vector: []float32{1}}, &stubIndex{
		results: []search.Result{
			{Kind: search.SourceKB, ID: "a1", Title: "Exports", Snippet: "Use the export tab.", Similarity: 0.9},
		},
	}, 5)
	app.Post("/api/chat", NewChatHandler(chatService, &stubEmbedder{vector: []float32{1}}).Assemble)

	body, _ := json.Marshal(map[string]string{"query": "how do I export my data"})
	req := httptest.NewRequest("POST", "/api/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Data struct {
			Prompt  string `json:"prompt"`
			Sources []struct {
				Kind string `json:"kind"`
				ID   string `json:"id"`
			} `json:"sources"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out.Data.Prompt, "Question: how do I export my data") {
		t.Errorf("prompt missing query:\n%s", out.Data.Prompt)
	}
	if len(out.Data.Sources) != 1 || out.Data.Sources[0].Kind != "kb" {
		t.Errorf("sources = %+v, want one kb source", out.Data.Sources)
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf, writer.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	store := storage.NewFSStore(filepath.Join(t.TempDir(), "bucket"), "http://localhost/files")
	if err := store.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("EnsureBucket: %v", err)
	}

	app := newTestApp()
	handler := NewUploadsHandler(store)
	app.Post("/api/uploads/:kind", handler.Upload)
	app.Post("/api/storage/setup", handler.Setup)

	t.Run("stores a text file", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "notes.txt", []byte("hello"))
		req := httptest.NewRequest("POST", "/api/uploads/text", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		var out struct {
			Data struct {
				Path string `json:"path"`
				URL  string `json:"url"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasSuffix(out.Data.Path, ".txt") {
			t.Errorf("path = %q, want .txt suffix", out.Data.Path)
		}
		if out.Data.Path == "notes.txt" {
			t.Error("stored name must not reuse the client file name")
		}
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "movie.mp4", []byte("x"))
		req := httptest.NewRequest("POST", "/api/uploads/video", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("rejects oversized text file", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), (1<<20)+1)
		body, contentType := multipartBody(t, "file", "big.txt", big)
		req := httptest.NewRequest("POST", "/api/uploads/text", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("setup is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest("POST", "/api/storage/setup", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
		}
	})
}
