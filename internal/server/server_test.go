package server

import (
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/benjaminschreck/go-slides/internal/testdeck"
	"github.com/benjaminschreck/go-slides/pkg/slides"
	"github.com/benjaminschreck/go-slides/pkg/slides/pptx"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := testdeck.New().Slide(
		testdeck.TextShape(2, "Title", "{{title}} for {{jobid}}"),
		testdeck.TableShape(3, "Items", testdeck.Table{
			X: 0, Y: 0, CX: 600, CY: 300,
			Rows: [][]string{{"{{table:items}}"}},
		}),
	).WriteFile(t, t.TempDir(), "template.pptx")

	engine, err := slides.New()
	require.NoError(t, err)

	srv := New(engine, Config{Template: path}, nil)
	srv.newID = func() string { return "generated-id" }
	return srv, path
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/render", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRender(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := post(t, srv.Handler(), `{
		"job_id": "J-42",
		"records": [
			{"jeschro_content": "{\"title\":\"Status\",\"items\":[{\"k\":\"a\"},{\"k\":\"b\"}]}"},
			{"jeschro_content": "{broken"}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "J-42", rec.Header().Get(HeaderJobID))
	assert.Equal(t, "1", rec.Header().Get(HeaderRendered))
	assert.Equal(t, "1", rec.Header().Get(HeaderSkipped))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "J-42.pptx")

	pres, err := pptx.OpenBytes(rec.Body.Bytes())
	require.NoError(t, err)
	shapes := pres.Slides()[0].Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, "Status for J-42", shapes[0].TextFrame().Text())
	require.True(t, shapes[1].HasTable())
	assert.Equal(t, 3, shapes[1].Table().Rows())
	assert.Equal(t, "b", shapes[1].Table().Cell(2, 0).Text())
}

func TestRenderGeneratesJobID(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{`{"records": []}`, `{"job_id": null, "records": []}`, `{"job_id": "", "records": []}`} {
		rec := post(t, srv.Handler(), body)
		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.Equal(t, "generated-id", rec.Header().Get(HeaderJobID), body)
		assert.Equal(t, "0", rec.Header().Get(HeaderRendered))
	}
}

func TestRenderBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"records": [`, "invalid JSON"},
		{"not object", `[]`, "JSON object"},
		{"missing records", `{"job_id": "J"}`, `"records" must be an array`},
		{"records not array", `{"records": {}}`, `"records" must be an array`},
		{"record not object", `{"records": [1]}`, "not an object"},
		{"job id not string", `{"job_id": 7, "records": []}`, `"job_id" must be a string`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, srv.Handler(), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), tt.want)
		})
	}
}

func TestRenderContentDisposition(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name  string
		jobID string
		want  string
	}{
		{"plain", "J-42", "J-42.pptx"},
		{"quote", `a"b`, `a"b.pptx`},
		{"backslash and semicolon", `x\\y; z`, `x\y; z.pptx`},
		{"non ascii", "bericht-ä", "bericht-ä.pptx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"job_id": ` + strconv.Quote(tt.jobID) + `, "records": []}`
			rec := post(t, srv.Handler(), body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
			require.NoError(t, err)
			assert.Equal(t, "attachment", disposition)
			assert.Equal(t, tt.want, params["filename"])
		})
	}
}

func TestRenderBodyTooLarge(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.config.MaxBodyBytes = 16

	rec := post(t, srv.Handler(), `{"records": [{"jeschro_content": "{}"}]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRenderMissingTemplate(t *testing.T) {
	engine, err := slides.New()
	require.NoError(t, err)
	srv := New(engine, Config{Template: filepath.Join(t.TempDir(), "gone.pptx")}, nil)

	rec := post(t, srv.Handler(), `{"records": []}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "template unavailable")
}

func TestRenderStructuralFailure(t *testing.T) {
	path := testdeck.New().Slide(
		testdeck.TableShape(3, "Items", testdeck.Table{NoXfrm: true, Rows: [][]string{{"{{table:items}}"}}}),
	).WriteFile(t, t.TempDir(), "template.pptx")

	engine, err := slides.New()
	require.NoError(t, err)
	srv := New(engine, Config{Template: path}, nil)

	rec := post(t, srv.Handler(), `{"records": [{"jeschro_content": "{\"items\":[{\"k\":1}]}"}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEqual(t, ContentType, rec.Header().Get("Content-Type"))
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/render", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
