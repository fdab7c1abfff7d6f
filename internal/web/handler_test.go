package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtv-fixtures/internal/config"
	"dtv-fixtures/internal/jobs"
	"dtv-fixtures/internal/service"
)

var jobIDRe = regexp.MustCompile(`data-id="([0-9a-f-]{36})"`)

func newTestRouter(t *testing.T, pass string) (*gin.Engine, *config.Config) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg := &config.Config{
		OutputDir:       filepath.Join(dir, "output"),
		UploadDir:       filepath.Join(dir, "uploads"),
		Seed:            5,
		NameSource:      "list",
		ThresholdMeters: 2000,
		LoginUser:       "user",
		LoginPass:       pass,
		SessionSecret:   "test-secret",
	}
	store := jobs.NewStore()
	t.Cleanup(store.Wait)
	return NewRouter(NewHandler(cfg, service.NewFixtureService(cfg, nil), store)), cfg
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func waitStatus(t *testing.T, r http.Handler, jobID string) map[string]any {
	t.Helper()
	var body map[string]any
	require.Eventually(t, func() bool {
		w := do(r, httptest.NewRequest(http.MethodGet, "/status?job_id="+jobID, nil))
		body = map[string]any{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			return false
		}
		return body["status"] != string(jobs.StatusRunning)
	}, 10*time.Second, 20*time.Millisecond)
	return body
}

func TestAuthRequired(t *testing.T) {
	r, _ := newTestRouter(t, "secret")

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = do(r, postForm("/login", url.Values{"username": {"user"}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "incorrectos")

	w = do(r, postForm("/login", url.Values{"username": {"user"}, "password": {"secret"}}))
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "proximity")
}

func TestRunAndDownload(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w := do(r, postForm("/run", url.Values{"scenario": {"duplicates"}}))
	require.Equal(t, http.StatusOK, w.Code)
	m := jobIDRe.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2)

	body := waitStatus(t, r, m[1])
	require.Equal(t, string(jobs.StatusDone), body["status"], body["error"])
	result := body["result"].(map[string]any)
	assert.Equal(t, "archivo_prueba_duplicados.xlsx", result["filename"])
	assert.EqualValues(t, 12, result["rows"])

	w = do(r, httptest.NewRequest(http.MethodGet, "/logs?job_id="+m[1], nil))
	assert.Contains(t, w.Body.String(), `"ok":true`)

	w = do(r, httptest.NewRequest(http.MethodGet, "/download-result/archivo_prueba_duplicados.xlsx", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, w.Body.Len())

	w = do(r, httptest.NewRequest(http.MethodGet, "/download-result/missing.xlsx", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunInvalidScenario(t *testing.T) {
	r, _ := newTestRouter(t, "")

	w := do(r, postForm("/run", url.Values{"scenario": {"weather"}}))
	m := jobIDRe.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2)

	body := waitStatus(t, r, m[1])
	assert.Equal(t, string(jobs.StatusError), body["status"])
	assert.NotEmpty(t, body["error"])
}

func TestVerifyUpload(t *testing.T) {
	r, cfg := newTestRouter(t, "")

	w := do(r, postForm("/run", url.Values{"scenario": {"proximity"}}))
	m := jobIDRe.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2)
	waitStatus(t, r, m[1])

	data, err := os.ReadFile(cfg.OutputPath("archivo_prueba_dtv_100_personas.xlsx"))
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("input_file", "upload.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/verify", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = do(r, req)
	m = jobIDRe.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2)

	body := waitStatus(t, r, m[1])
	require.Equal(t, string(jobs.StatusDone), body["status"], body["error"])
	result := body["result"].(map[string]any)
	assert.EqualValues(t, 100, result["rows"])
	assert.NotEmpty(t, result["export"])
	assert.Contains(t, result["summary"], "fuera del rango: 24")
}

func TestStatusUnknownJob(t *testing.T) {
	r, _ := newTestRouter(t, "")
	w := do(r, httptest.NewRequest(http.MethodGet, "/status?job_id=nope", nil))
	assert.JSONEq(t, `{"ok":false}`, w.Body.String())

	w = do(r, httptest.NewRequest(http.MethodPost, "/cancel?job_id=nope", nil))
	assert.JSONEq(t, `{"ok":false}`, w.Body.String())
}
