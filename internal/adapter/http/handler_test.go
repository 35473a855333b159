package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/adapter/repository/mocks"
	"resume-builder/internal/export"
	"resume-builder/internal/render"
	"resume-builder/internal/store"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubExporter struct {
	mu   sync.Mutex
	err  error
	keys []string
}

func (s *stubExporter) Export(_ context.Context, sf render.Surface, fileName string) (export.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, sf.Key)
	if s.err != nil {
		return export.Result{}, s.err
	}
	pdf := []byte("%PDF-1.3 test")
	return export.Result{FileName: fileName, Pages: 1, PDF: pdf, SizeBytes: len(pdf)}, nil
}

type testApp struct {
	app  *fiber.App
	prom *Prometheus
}

func newTestApp(t *testing.T, kv repository.KV, exp usecase.Exporter) testApp {
	t.Helper()
	r, err := render.NewRenderer()
	require.NoError(t, err)
	svc := usecase.NewService(usecase.Deps{KV: kv, Renderer: r, Exporter: exp})
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	reg := prometheus.NewRegistry()
	prom, err := NewPrometheus(reg)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(RequestID())
	app.Use(Logger(zerolog.Nop()))
	app.Use(prom.Handler())
	NewHandler(svc).Register(app, reg)
	return testApp{app: app, prom: prom}
}

func (ta testApp) do(t *testing.T, method, path, body string) (int, []byte, map[string][]string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b, resp.Header
}

func decodeError(t *testing.T, b []byte) errorPayload {
	t.Helper()
	var p errorPayload
	require.NoError(t, json.Unmarshal(b, &p))
	return p
}

func TestGetResume(t *testing.T) {
	ta := newTestApp(t, repository.NewMemoryKV(), &stubExporter{})
	status, body, hdr := ta.do(t, "GET", "/resumes/u1", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, hdr[RequestIDHeader])

	var v struct {
		Document map[string]json.RawMessage `json:"document"`
		Template string                     `json:"template"`
	}
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, "modern", v.Template)
	assert.Contains(t, v.Document, "workExperience")

	assert.Equal(t, 1.0, testutil.ToFloat64(ta.prom.requests.WithLabelValues("GET", "/resumes/:userId", "200")))
}

func TestReplaceSection(t *testing.T) {
	ta := newTestApp(t, repository.NewMemoryKV(), &stubExporter{})

	status, _, _ := ta.do(t, "PUT", "/resumes/u1/sections/hobbies", `["Chess"]`)
	assert.Equal(t, fiber.StatusOK, status)

	status, body, _ := ta.do(t, "PUT", "/resumes/u1/sections/workExperience", `[]`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	p := decodeError(t, body)
	assert.Equal(t, "VALIDATION_FAILED", p.Error.Code)
	assert.NotEmpty(t, p.RequestID)

	status, body, _ = ta.do(t, "PUT", "/resumes/u1/sections/awards", `[]`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, body).Error.Code)
}

func TestEntryRoutes(t *testing.T) {
	ta := newTestApp(t, repository.NewMemoryKV(), &stubExporter{})

	status, _, _ := ta.do(t, "POST", "/resumes/u1/sections/workExperience/entries", "")
	require.Equal(t, fiber.StatusCreated, status)

	status, body, _ := ta.do(t, "PATCH", "/resumes/u1/sections/workExperience/entries/1", `{"fields":{"company":"Acme"},"current":true}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"company":"Acme"`)
	assert.Contains(t, string(body), `"current":true`)

	status, _, _ = ta.do(t, "PATCH", "/resumes/u1/sections/workExperience/entries/1", `{"fields":{"endDate":"2024-01"}}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _, _ = ta.do(t, "PATCH", "/resumes/u1/sections/workExperience/entries/1", `{}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _, _ = ta.do(t, "PATCH", "/resumes/u1/sections/workExperience/entries/x", `{"fields":{"company":"A"}}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, body, _ = ta.do(t, "POST", "/resumes/u1/sections/workExperience/entries/1/items", `{"text":"Shipped"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"Shipped"`)

	status, _, _ = ta.do(t, "DELETE", "/resumes/u1/sections/workExperience/entries/1/items/0", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = ta.do(t, "DELETE", "/resumes/u1/sections/workExperience/entries/1", "")
	assert.Equal(t, fiber.StatusOK, status)
	status, body, _ = ta.do(t, "DELETE", "/resumes/u1/sections/workExperience/entries/0", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "workExperience", decodeError(t, body).Error.Field)

	status, _, _ = ta.do(t, "POST", "/resumes/u1/sections/workExperience/entries/0/items", `{bad`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTemplateAndRender(t *testing.T) {
	ta := newTestApp(t, repository.NewMemoryKV(), &stubExporter{})

	status, body, _ := ta.do(t, "PUT", "/resumes/u1/template", `{"template":"retro"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Template", decodeError(t, body).Error.Field)

	status, _, _ = ta.do(t, "PUT", "/resumes/u1/template", `{"template":"classic"}`)
	require.Equal(t, fiber.StatusOK, status)

	status, body, hdr := ta.do(t, "GET", "/resumes/u1/render", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []string{"classic"}, hdr["X-Resume-Template"])
	assert.Contains(t, string(body), `id="resume-surface"`)

	_, _, hdr = ta.do(t, "GET", "/resumes/u1/render?template=creative", "")
	assert.Equal(t, []string{"creative"}, hdr["X-Resume-Template"])
}

func TestExportRoute(t *testing.T) {
	exp := &stubExporter{}
	ta := newTestApp(t, repository.NewMemoryKV(), exp)

	status, body, hdr := ta.do(t, "POST", "/resumes/u1/export", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []string{"application/pdf"}, hdr["Content-Type"])
	assert.Contains(t, hdr["Content-Disposition"][0], "Resume_Resume_")
	assert.Equal(t, []string{"1"}, hdr["X-Export-Pages"])
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))

	exp.mu.Lock()
	exp.err = export.ErrExportInProgress
	exp.mu.Unlock()
	status, body, _ = ta.do(t, "POST", "/resumes/u1/export", "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "EXPORT_IN_PROGRESS", decodeError(t, body).Error.Code)

	exp.mu.Lock()
	exp.err = &export.ExportError{Stage: export.StageCompose, Err: io.ErrUnexpectedEOF}
	exp.mu.Unlock()
	status, body, _ = ta.do(t, "POST", "/resumes/u1/export", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "EXPORT_FAILED", decodeError(t, body).Error.Code)

	status, body, _ = ta.do(t, "GET", "/resumes/u1/exports", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, _, _ = ta.do(t, "GET", "/resumes/u1/exports?limit=0", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUserIDMustBeOneSafeSegment(t *testing.T) {
	exp := &stubExporter{}
	ta := newTestApp(t, repository.NewMemoryKV(), exp)

	status, body, _ := ta.do(t, "POST", "/resumes/../export", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_USER_ID", decodeError(t, body).Error.Code)

	for _, id := range []string{".", ".hidden", "a%2F..%2Fb", "a%5Cb"} {
		status, _, _ := ta.do(t, "POST", "/resumes/"+id+"/export", "")
		assert.NotEqual(t, fiber.StatusOK, status, id)
	}
	status, _, _ = ta.do(t, "GET", "/resumes/..", "")
	assert.NotEqual(t, fiber.StatusOK, status)

	status, _, _ = ta.do(t, "POST", "/resumes/ada.lovelace@example.com/export", "")
	assert.Equal(t, fiber.StatusOK, status)

	exp.mu.Lock()
	defer exp.mu.Unlock()
	assert.Equal(t, []string{"ada.lovelace@example.com"}, exp.keys)
}

func TestSavePersistenceFailure(t *testing.T) {
	kv := &mocks.MockKV{}
	kv.On("Get", mock.Anything, mock.Anything).Return("", false, nil)
	kv.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(io.ErrClosedPipe)
	ta := newTestApp(t, kv, &stubExporter{})

	status, body, _ := ta.do(t, "POST", "/resumes/u1/save", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "PERSISTENCE_UNAVAILABLE", decodeError(t, body).Error.Code)

	// memory keeps the change even though the write failed
	status, _, _ = ta.do(t, "PUT", "/resumes/u1/sections/hobbies", `["Chess"]`)
	assert.Equal(t, fiber.StatusOK, status)
	_, body, _ = ta.do(t, "GET", "/resumes/u1", "")
	assert.Contains(t, string(body), `"Chess"`)
}

func TestSaveAndReset(t *testing.T) {
	kv := repository.NewMemoryKV()
	ta := newTestApp(t, kv, &stubExporter{})

	ta.do(t, "PUT", "/resumes/u1/sections/hobbies", `["Chess"]`)
	status, _, _ := ta.do(t, "POST", "/resumes/u1/save", "")
	require.Equal(t, fiber.StatusNoContent, status)
	raw, found, err := kv.Get(context.Background(), store.DocumentKey("u1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, raw, `"Chess"`)

	status, body, _ := ta.do(t, "POST", "/resumes/u1/reset", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(body), `"Chess"`)
}

func TestAssistRoutes(t *testing.T) {
	ta := newTestApp(t, repository.NewMemoryKV(), &stubExporter{})

	status, body, _ := ta.do(t, "POST", "/resumes/u1/assist/summary", "")
	require.Equal(t, fiber.StatusOK, status)
	var out struct {
		Applied bool `json:"applied"`
		Notice  *struct {
			Field string `json:"field"`
		} `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Applied)
	require.NotNil(t, out.Notice)
	assert.Equal(t, "personalInfo.summary", out.Notice.Field)

	status, _, _ = ta.do(t, "POST", "/resumes/u1/assist/achievements/exp-1", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = ta.do(t, "POST", "/resumes/u1/assist/achievements/missing", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestHealthAndMetrics(t *testing.T) {
	ta := newTestApp(t, repository.NewMemoryKV(), &stubExporter{})

	status, _, _ := ta.do(t, "GET", "/healthz", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, body, _ := ta.do(t, "GET", "/metrics", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "http_requests_total")

	status, body, _ = ta.do(t, "GET", "/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Error.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	ta := newTestApp(t, repository.NewMemoryKV(), &stubExporter{})
	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "rid-1", resp.Header.Get(RequestIDHeader))
}
