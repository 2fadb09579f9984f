package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/youruser/photokit/internal/presets"
	"github.com/youruser/photokit/internal/session"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewHandler(presets.Builtin(), session.NewStore(0, 0, nil), 8<<20))
	return r
}

type upload struct {
	field string
	w, h  int
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.New(w, h, color.NRGBA{G: 0xff, A: 0xff})); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// multipartBody builds a form with the given PNG uploads and text fields.
func multipartBody(t *testing.T, files []upload, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, f := range files {
		fw, err := mw.CreateFormFile(f.field, "img"+string(rune('a'+i))+".png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(pngOf(t, f.w, f.h))
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func do(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodePNG(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("response is not a png: %v", err)
	}
	return img
}

func TestHealth(t *testing.T) {
	w := do(newRouter(), http.MethodGet, "/api/health", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("health = %d %s", w.Code, w.Body)
	}
}

func TestMergeHorizontal(t *testing.T) {
	body, ct := multipartBody(t,
		[]upload{{"images", 10, 20}, {"images", 30, 40}},
		map[string]string{"config": `{"direction":"horizontal","autoResize":false,"padding":5}`},
	)
	w := do(newRouter(), http.MethodPost, "/api/merge", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	// 5 + 10 + 5 + 30 + 5 across, 5 + 40 + 5 down
	if got := w.Header().Get("X-Image-Width"); got != "55" {
		t.Errorf("X-Image-Width = %q, want 55", got)
	}
	img := decodePNG(t, w.Body.Bytes())
	if b := img.Bounds(); b.Dx() != 55 || b.Dy() != 50 {
		t.Errorf("canvas %dx%d, want 55x50", b.Dx(), b.Dy())
	}
}

func TestMergePresetAspect(t *testing.T) {
	body, ct := multipartBody(t,
		[]upload{{"images", 10, 10}, {"images", 10, 10}},
		map[string]string{"preset": "Instagram Post", "format": "jpg"},
	)
	w := do(newRouter(), http.MethodPost, "/api/merge", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	if w.Header().Get("Content-Type") != "image/jpeg" {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Image-Width") != "20" || w.Header().Get("X-Image-Height") != "20" {
		t.Errorf("size = %sx%s, want 20x20", w.Header().Get("X-Image-Width"), w.Header().Get("X-Image-Height"))
	}
}

func TestMergeBadRequests(t *testing.T) {
	r := newRouter()
	tests := []struct {
		name   string
		files  []upload
		fields map[string]string
	}{
		{"no images", nil, map[string]string{"config": `{}`}},
		{"bad config json", []upload{{"images", 1, 1}}, map[string]string{"config": `{`}},
		{"grid without columns", []upload{{"images", 1, 1}}, map[string]string{"config": `{"direction":"grid"}`}},
		{"unknown preset", []upload{{"images", 1, 1}}, map[string]string{"preset": "Poster"}},
		{"bad format", []upload{{"images", 1, 1}}, map[string]string{"format": "bmp"}},
		{"huge padding", []upload{{"images", 1, 1}}, map[string]string{"config": `{"padding":1048576}`}},
		{"huge aspect", []upload{{"images", 1, 1}}, map[string]string{"config": `{"aspectRatio":{"width":3,"height":4611686018427387904}}`}},
	}
	for _, tt := range tests {
		body, ct := multipartBody(t, tt.files, tt.fields)
		w := do(r, http.MethodPost, "/api/merge", body, ct)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400 (%s)", tt.name, w.Code, w.Body)
		}
	}
}

func TestMergeRejectsUndecodableUpload(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("images", "notes.txt")
	fw.Write([]byte("not an image"))
	mw.Close()
	w := do(newRouter(), http.MethodPost, "/api/merge", &buf, mw.FormDataContentType())
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "notes.txt") {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	req := `{"sizes":[{"width":100,"height":50},{"width":100,"height":50}],
		"config":{"direction":"vertical","autoResize":true,"padding":10,"backgroundColor":"#fff"}}`
	w := do(newRouter(), http.MethodPost, "/api/merge/layout", strings.NewReader(req), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var got struct {
		Width, Height int
		Placements    []struct{ X, Y, Width, Height int }
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Width != 120 || got.Height != 130 || len(got.Placements) != 2 {
		t.Fatalf("layout = %+v", got)
	}
	if got.Placements[1].Y != 70 {
		t.Errorf("second placement y = %d, want 70", got.Placements[1].Y)
	}
}

func TestBulkMerge(t *testing.T) {
	body, ct := multipartBody(t,
		[]upload{{"group1", 4, 4}, {"group1", 4, 4}, {"group3", 2, 6}},
		map[string]string{"config": `{"direction":"vertical","autoResize":false}`},
	)
	w := do(newRouter(), http.MethodPost, "/api/merge/bulk", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 || zr.File[0].Name != "merged-1.png" || zr.File[1].Name != "merged-3.png" {
		names := []string{}
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		t.Fatalf("archive entries = %v", names)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if sz := decodePNG(t, b).Bounds().Size(); sz != image.Pt(4, 8) {
		t.Errorf("merged-1 size = %v, want 4x8", sz)
	}
}

func TestBulkSkipsUndecodableGroup(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("group1", "a.png")
	fw.Write(pngOf(t, 4, 4))
	fw, _ = mw.CreateFormFile("group2", "notes.txt")
	fw.Write([]byte("not an image"))
	mw.Close()

	w := do(newRouter(), http.MethodPost, "/api/merge/bulk", &buf, mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "merged-1.png" {
		t.Errorf("archive has %d entries", len(zr.File))
	}
}

func TestBulkWithoutGroups(t *testing.T) {
	body, ct := multipartBody(t, []upload{{"images", 1, 1}}, nil)
	w := do(newRouter(), http.MethodPost, "/api/merge/bulk", body, ct)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestPresetsFilter(t *testing.T) {
	w := do(newRouter(), http.MethodGet, "/api/presets?kind=resize&orientation=portrait", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var got struct {
		Count   int              `json:"count"`
		Presets []presets.Preset `json:"presets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 1 || got.Presets[0].Name != "Instagram Story" {
		t.Errorf("presets = %+v", got)
	}
}

func TestQR(t *testing.T) {
	r := newRouter()
	if w := do(r, http.MethodGet, "/api/qr", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing text: status %d", w.Code)
	}
	w := do(r, http.MethodGet, "/api/qr?text=hello&size=128", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if sz := decodePNG(t, w.Body.Bytes()).Bounds().Size(); sz != image.Pt(128, 128) {
		t.Errorf("qr size = %v", sz)
	}
	if w := do(r, http.MethodGet, "/api/qr?text=hello&size=100000", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("oversized qr: status %d", w.Code)
	}
}

func TestRotateTool(t *testing.T) {
	body, ct := multipartBody(t, []upload{{"image", 10, 4}}, map[string]string{"degrees": "90"})
	w := do(newRouter(), http.MethodPost, "/api/tools/rotate", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	if sz := decodePNG(t, w.Body.Bytes()).Bounds().Size(); sz != image.Pt(4, 10) {
		t.Errorf("rotated size = %v, want 4x10", sz)
	}
}

func TestResizeToolPreset(t *testing.T) {
	body, ct := multipartBody(t, []upload{{"image", 10, 10}}, map[string]string{"preset": "Twitter Post"})
	w := do(newRouter(), http.MethodPost, "/api/tools/resize", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	if w.Header().Get("X-Image-Width") != "1200" || w.Header().Get("X-Image-Height") != "675" {
		t.Errorf("resized to %sx%s", w.Header().Get("X-Image-Width"), w.Header().Get("X-Image-Height"))
	}
}

func TestResizeToolRejectsHugeTargets(t *testing.T) {
	r := newRouter()
	for _, fields := range []map[string]string{
		{"width": "1048576", "height": "1048576"},
		{"percent": "1000000000"},
	} {
		body, ct := multipartBody(t, []upload{{"image", 10, 10}}, fields)
		if w := do(r, http.MethodPost, "/api/tools/resize", body, ct); w.Code != http.StatusBadRequest {
			t.Errorf("%v: status %d, want 400", fields, w.Code)
		}
	}
}

func TestSplitTool(t *testing.T) {
	body, ct := multipartBody(t, []upload{{"image", 9, 6}}, map[string]string{"rows": "2", "columns": "3"})
	w := do(newRouter(), http.MethodPost, "/api/tools/split", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	if w.Header().Get("X-Parts") != "6" {
		t.Errorf("X-Parts = %q", w.Header().Get("X-Parts"))
	}
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 6 || zr.File[5].Name != "part-6.png" {
		t.Errorf("got %d parts", len(zr.File))
	}
}

func TestUploadTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewHandler(presets.Builtin(), session.NewStore(0, 0, nil), 64))
	body, ct := multipartBody(t, []upload{{"images", 32, 32}}, nil)
	w := do(r, http.MethodPost, "/api/merge", body, ct)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d, want 413", w.Code)
	}
}

func TestSessionLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, NewHandler(presets.Builtin(), session.NewStore(0, 0, nil, session.WithMaxSessions(1)), 8<<20))
	if w := do(r, http.MethodPost, "/api/sessions", nil, ""); w.Code != http.StatusCreated {
		t.Fatalf("first session: status %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/sessions", nil, ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("second session: status %d, want 503", w.Code)
	}
}

func TestSessionFlow(t *testing.T) {
	r := newRouter()
	var view sessionView
	read := func(w *httptest.ResponseRecorder, want int) {
		t.Helper()
		if w.Code != want {
			t.Fatalf("status %d, want %d: %s", w.Code, want, w.Body)
		}
		if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
			t.Fatal(err)
		}
	}

	read(do(r, http.MethodPost, "/api/sessions", nil, ""), http.StatusCreated)
	base := "/api/sessions/" + view.ID

	body, ct := multipartBody(t, []upload{{"images", 6, 6}, {"images", 6, 6}}, nil)
	read(do(r, http.MethodPost, base+"/images", body, ct), http.StatusOK)
	if len(view.Images) != 2 || !view.CanUndo {
		t.Fatalf("after upload = %+v", view)
	}

	patch := strings.NewReader(`{"direction":"vertical","autoResize":false}`)
	read(do(r, http.MethodPatch, base+"/options", patch, "application/json"), http.StatusOK)
	if view.Options.Direction != "vertical" {
		t.Errorf("direction = %q", view.Options.Direction)
	}

	w := do(r, http.MethodGet, base+"/preview", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("preview status %d: %s", w.Code, w.Body)
	}
	if sz := decodePNG(t, w.Body.Bytes()).Bounds().Size(); sz != image.Pt(6, 12) {
		t.Errorf("preview size = %v, want 6x12", sz)
	}

	read(do(r, http.MethodPost, base+"/undo", nil, ""), http.StatusOK)
	if len(view.Images) != 1 || !view.CanRedo {
		t.Errorf("after undo = %+v", view)
	}
	read(do(r, http.MethodPost, base+"/redo", nil, ""), http.StatusOK)
	if len(view.Images) != 2 {
		t.Errorf("after redo = %+v", view)
	}

	read(do(r, http.MethodPost, base+"/reorder", strings.NewReader(`{"from":0,"to":1}`), "application/json"), http.StatusOK)
	first := view.Images[0].ID
	read(do(r, http.MethodDelete, base+"/images/"+first, nil, ""), http.StatusOK)
	if len(view.Images) != 1 {
		t.Errorf("after remove = %+v", view)
	}
	if w := do(r, http.MethodDelete, base+"/images/"+first, nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("removing twice: status %d", w.Code)
	}

	if w := do(r, http.MethodPatch, base+"/options", strings.NewReader(`{"padding":-1}`), "application/json"); w.Code != http.StatusBadRequest {
		t.Errorf("negative padding: status %d", w.Code)
	}
	if w := do(r, http.MethodDelete, base, nil, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", w.Code)
	}
	if w := do(r, http.MethodGet, base, nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("get deleted: status %d", w.Code)
	}
}
