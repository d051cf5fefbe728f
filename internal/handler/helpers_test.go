package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msomdec/portfolio-api/internal/handler"
	"github.com/msomdec/portfolio-api/internal/repository/sqlite"
	"github.com/msomdec/portfolio-api/internal/service"
	"github.com/msomdec/portfolio-api/internal/storage"
)

type testServer struct {
	*httptest.Server
	uploadDir string
}

// newTestServer wires the full stack against a temporary database and a
// local backend, wrapped in the same middleware chain the binary uses.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	backend, err := storage.NewLocalBackend(dir, storage.DefaultServePrefix)
	require.NoError(t, err)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		service.NewUploadService(db.Uploads(), backend),
		service.NewOrderService(db.Orders()),
		&handler.StaticFiles{Prefix: backend.ServePrefix(), Dir: backend.Dir()},
		nil,
	)

	srv := httptest.NewServer(handler.RequestLogger(handler.SecurityHeaders(handler.CORS([]string{"*"}, mux))))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, uploadDir: dir}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{B: 180, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

// multipartBody builds a form with the given fields and an optional file part.
func multipartBody(t *testing.T, fields map[string]string, file *filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *testServer) postUpload(t *testing.T, fields map[string]string, file *filePart) *http.Response {
	t.Helper()
	return s.postUploadTo(t, "/uploads", fields, file)
}

func (s *testServer) postUploadTo(t *testing.T, path string, fields map[string]string, file *filePart) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, fields, file)
	resp, err := http.Post(s.URL+path, contentType, body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
