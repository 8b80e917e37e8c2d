package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "returns-desk/internal/application"
	"returns-desk/internal/container"
	"returns-desk/internal/infrastructure/backend"
	"returns-desk/internal/infrastructure/export"
	"returns-desk/internal/infrastructure/imaging"
	"returns-desk/internal/infrastructure/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	router    *gin.Engine
	exportDir string
}

// newTestEnv поднимает дашборд поверх фейкового бэкенда.
func newTestEnv(t *testing.T, api http.HandlerFunc) *testEnv {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	log := zap.NewNop()
	client := backend.NewClient(srv.URL, srv.Client(), log)
	normalizer := imaging.NewNormalizer(2, log)
	items := app.NewItemService(client, nil, log)
	dir := t.TempDir()

	deps := &container.Container{
		Backend:           client,
		Normalizer:        normalizer,
		OperatorService:   app.NewOperatorService(storage.NewMemoryOperatorRepository()),
		ItemService:       items,
		InspectionService: app.NewInspectionService(client, log),
		ExportService:     app.NewExportService(export.NewExporter(log), export.NewDirSink(dir, log), log),
		Workspaces:        app.NewWorkspaces(normalizer, nil, items, client, log),
	}

	return &testEnv{
		router:    NewRouter(deps, 1<<20, log),
		exportDir: dir,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 100, B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestItemDetails(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/get-item-details", r.URL.Path)
		require.Equal(t, "SKU-1", r.URL.Query().Get("itemNumber"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"itemNumber":"SKU-1","description":"Kettle"}}`))
	})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/items/SKU-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Kettle", decodeBody(t, w)["description"])
}

func TestItemDetails_BackendErrorIsGeneric(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"db down"}`))
	})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/items/SKU-1", nil))
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, app.MsgFetchItemError, decodeBody(t, w)["error"])
}

func TestSearch_StatusErrorReturnsGenericMessage(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error"}`))
	})

	w := env.do(t, jsonRequest(t, http.MethodPost, "/api/search", gin.H{"query": "kettle"}))
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, app.MsgFetchResultsError, decodeBody(t, w)["error"])
}

func TestSearch_RequiresQuery(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	w := env.do(t, jsonRequest(t, http.MethodPost, "/api/search", gin.H{}))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchThenExport(t *testing.T) {
	img := "data:image/png;base64," + base64Of(jpegBytes(t, 4, 4))
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/get-similar-item", r.URL.Path)
		_ = json.NewEncoder(w).Encode(gin.H{
			"status": "success",
			"similar_items": []gin.H{
				{"image": img, "result": `{"grading_reason_summary":"Dented"}`},
				{"image": img, "result": "Fine"},
			},
		})
	})

	req := jsonRequest(t, http.MethodPost, "/api/search", gin.H{"query": "kettle"})
	req.Header.Set(OperatorHeader, "7")
	w := env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	var search struct {
		Results []struct {
			ID     string `json:"id"`
			Result string `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &search))
	require.Len(t, search.Results, 2)
	require.Equal(t, "0", search.Results[0].ID)
	require.Equal(t, "Dented", search.Results[0].Result)

	req = httptest.NewRequest(http.MethodPost, "/api/export", nil)
	req.Header.Set(OperatorHeader, "7")
	w = env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	var exported struct {
		Batch string   `json:"batch"`
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
	require.Len(t, exported.Files, 3)

	for _, name := range []string{export.SpreadsheetName, "image_0.png", "image_1.png"} {
		_, err := os.Stat(filepath.Join(env.exportDir, exported.Batch, name))
		require.NoError(t, err, name)
	}
}

func TestExport_NoResultsWritesNothing(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	w := env.do(t, jsonRequest(t, http.MethodPost, "/api/export", gin.H{"results": []any{}}))
	require.Equal(t, http.StatusOK, w.Code)

	entries, err := os.ReadDir(env.exportDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestToggleTagAndSearchTags(t *testing.T) {
	var got []string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tags []string `json:"tags"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = body.Tags
		_, _ = w.Write([]byte(`{"status":"success","similar_items":[]}`))
	})

	for _, tag := range []string{"dent", "scratch", "dent"} {
		w := env.do(t, jsonRequest(t, http.MethodPost, "/api/tags/toggle", gin.H{"tag": tag}))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/search/tags", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"scratch"}, got)
}

func TestQualityCheck_SendsNormalizedImages(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sortv2", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "123", r.FormValue("itemNumber"))

		parts := r.MultipartForm.File["images"]
		require.Len(t, parts, 1)
		require.Equal(t, "front.png", parts[0].Filename)
		require.Equal(t, "image/png", parts[0].Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"grading_reason":[{"Packaging":"intact"}],"grading_reason_summary":"Grade A"}`))
	})

	req := multipartRequest(t, "/api/quality-check",
		map[string]string{"itemNumber": "123"},
		map[string][]byte{"front.jpg": jpegBytes(t, 10, 10)})
	w := env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Grade A", decodeBody(t, w)["grading_reason_summary"])
}

func TestQualityCheck_UnreadableImage(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})

	req := multipartRequest(t, "/api/quality-check",
		map[string]string{"itemNumber": "123"},
		map[string][]byte{"notes.jpg": []byte("plain text")})
	w := env.do(t, req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestQualityCheck_NoImages(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	req := multipartRequest(t, "/api/quality-check", map[string]string{"itemNumber": "123"}, nil)
	w := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaim_RejectedByBackend(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "lid cracked", r.FormValue("claimDetails"))
		_, _ = w.Write([]byte(`{"claim_validation_reasoning":"no crack","Approval":"F"}`))
	})

	req := multipartRequest(t, "/api/claims",
		map[string]string{"itemNumber": "123", "claimDetails": "lid cracked"},
		map[string][]byte{"lid.jpg": jpegBytes(t, 6, 6)})
	w := env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decodeBody(t, w)["approved"])
}

func TestOnboard_BackendMessageIsDetail(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"item already exists"}`))
	})

	req := multipartRequest(t, "/api/onboard",
		map[string]string{"itemNumber": "123", "itemDescription": "teapot"},
		map[string][]byte{"pot.jpg": jpegBytes(t, 6, 6)})
	w := env.do(t, req)
	require.Equal(t, http.StatusBadGateway, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, app.MsgOnboardError, body["error"])
	require.Equal(t, "item already exists", body["detail"])
}

func TestUpdateItem(t *testing.T) {
	var sent map[string]any
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get-item-details":
			_, _ = w.Write([]byte(`{"status":"success","data":{"itemNumber":"SKU-1","decisionModel":"old","tags":["dent"]}}`))
		case "/api/update-decision-model":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			_, _ = w.Write([]byte(`{"status":"success"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	w := env.do(t, jsonRequest(t, http.MethodPatch, "/api/items/SKU-1", gin.H{
		"decisionModel": "new",
		"addTags":       []string{"scratch"},
		"removeTags":    []string{"dent"},
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "new", sent["decisionModel"])
	require.Equal(t, []any{"scratch"}, sent["tags"])
	require.True(t, strings.Contains(w.Body.String(), app.MsgUpdateModelSuccess))
}

func base64Of(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
