package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/config"
)

const statementText = "Date Description Debit Credit Balance\n(RM)\n" +
	"2024-01-10 XXXX-00000000 (1 of 1 repayment) || Principal (0.00) 100.00 900.00\n" +
	"Important!\n"

type stubSource struct {
	pages []string
}

func (s stubSource) Extract(context.Context, string) ([]string, error) {
	return s.pages, nil
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewApp(&Handler{
		Config: config.Default(),
		Source: stubSource{pages: []string{statementText}},
		Log:    log,
	})
}

func decode(t *testing.T, resp *http.Response) ConvertResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out ConvertResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func upload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func textRequest(text string) *http.Request {
	form := url.Values{"text": {text}}
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "fiber", result["engine"])
}

func TestConvertEndpointRequiresFile(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	out := decode(t, resp)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.ID)
}

func TestConvertText(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(textRequest(statementText))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.Transactions)
	assert.Equal(t, 1, out.Postings)
	assert.Contains(t, out.Ledger, "2024-01-10 * XXXX-00000000  ; 1 of 1 repayment\n")
}

func TestConvertTextUpload(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(upload(t, "jan.txt", statementText))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode(t, resp).Transactions)
}

func TestConvertPDFUpload(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(upload(t, "Jan.PDF", "%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, decode(t, resp).Ledger, "-100.00 RM  ; Principal")
}

func TestConvertUnsupportedUpload(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(upload(t, "jan.docx", "x"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestConvertInputErrors(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(textRequest("no table here"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decode(t, resp).Error, "table boundary not found")

	bad := strings.Replace(statementText, "Principal", "Mystery", 1)
	resp, err = app.Test(textRequest(bad))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	out := decode(t, resp)
	require.NotNil(t, out.Row)
	assert.Equal(t, "Mystery", out.Row.Comment)
}
