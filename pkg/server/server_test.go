package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/moodsense/pkg/analysis"
	"github.com/otherjamesbrown/moodsense/pkg/envelope"
	apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
	"github.com/otherjamesbrown/moodsense/pkg/observability"
)

const testKeyEnv = "TEST_MOODSENSE_SERVER_KEY"

const export = `11/10/2024, 10:15 - Alice: Good morning
11/10/2024, 10:47 - Bob: Hi!
12/10/2024, 08:02 - Alice: Coffee?`

type failingAnalyzer struct{ err error }

func (f failingAnalyzer) Analyze(context.Context, string) (*analysis.Report, error) {
	return nil, f.err
}

type testServer struct {
	router  http.Handler
	metrics *observability.Metrics
	keys    envelope.KeyPair
}

func newTestServer(t *testing.T, a Analyzer, withKey bool) *testServer {
	t.Helper()
	kp, err := envelope.GenerateKeyPair()
	require.NoError(t, err)
	if withKey {
		t.Setenv(testKeyEnv, kp.PrivateKey)
	} else {
		t.Setenv(testKeyEnv, "")
	}
	if a == nil {
		a = analysis.New(analysis.WithLogger(logging.NewNopLogger()))
	}

	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	router := NewRouter(Deps{
		Analyzer: a,
		Keys:     envelope.NewEnvKeyProvider(testKeyEnv),
		Logger:   logging.NewNopLogger(),
		Metrics:  m,
		Gatherer: reg,
	}, Config{MaxUploadBytes: 1 << 20})
	return &testServer{router: router, metrics: m, keys: kp}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, APIPrefix+"/analyze-conversation", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestRoot_Health_Version(t *testing.T) {
	s := newTestServer(t, nil, false)

	for _, path := range []string{"/", "/healthz", "/version"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil, false)
	s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "moodsense_http_requests_total")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")))
}

func TestMiddleware_Headers(t *testing.T) {
	s := newTestServer(t, nil, false)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Regexp(t, `^\d+\.\d{2}s$`, rec.Header().Get(HeaderResponseTime))
	assert.Regexp(t, `^\d+MB$`, rec.Header().Get(HeaderMemoryUsage))
	assert.Regexp(t, `^\d+\.\d{6}$`, rec.Header().Get(HeaderRequestCost))
}

func TestPublicKey(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		s := newTestServer(t, nil, true)
		rec := s.do(httptest.NewRequest(http.MethodGet, APIPrefix+"/public-key", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, s.keys.PublicKey, body["public_key"])
	})

	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t, nil, false)
		rec := s.do(httptest.NewRequest(http.MethodGet, APIPrefix+"/public-key", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, apperrors.CodeKeyNotConfigured, decodeError(t, rec).Code)
	})

	t.Run("invalid key", func(t *testing.T) {
		s := newTestServer(t, nil, false)
		t.Setenv(testKeyEnv, "garbage")
		rec := s.do(httptest.NewRequest(http.MethodGet, APIPrefix+"/public-key", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestPublicKey_LoadsKeyAddedLater(t *testing.T) {
	s := newTestServer(t, nil, false)
	rec := s.do(httptest.NewRequest(http.MethodGet, APIPrefix+"/public-key", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	t.Setenv(testKeyEnv, s.keys.PrivateKey)
	rec = s.do(httptest.NewRequest(http.MethodGet, APIPrefix+"/public-key", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeUpload(t *testing.T) {
	utf16 := []byte{0xFF, 0xFE}
	for _, r := range export {
		utf16 = append(utf16, byte(r), 0)
	}

	tests := []struct {
		name        string
		filename    string
		contentType string
		body        []byte
		wantStatus  int
		wantCode    apperrors.ErrorCode
	}{
		{"plain text", "chat.txt", "text/plain", []byte(export), http.StatusOK, ""},
		{"octet stream", "chat.txt", "application/octet-stream", []byte(export), http.StatusOK, ""},
		{"charset param", "chat.txt", "text/plain; charset=utf-8", []byte(export), http.StatusOK, ""},
		{"utf-8 bom", "chat.txt", "text/plain", append([]byte("\xEF\xBB\xBF"), export...), http.StatusOK, ""},
		{"utf-16 bom", "chat.txt", "text/plain", utf16, http.StatusOK, ""},
		{"empty file", "chat.txt", "text/plain", nil, http.StatusOK, ""},
		{"wrong extension", "chat.zip", "text/plain", []byte(export), http.StatusBadRequest, apperrors.CodeUnsupportedMedia},
		{"wrong content type", "chat.txt", "image/png", []byte(export), http.StatusBadRequest, apperrors.CodeUnsupportedMedia},
		{"not utf-8", "chat.txt", "text/plain", []byte("11/10/2024, 10:15 - Alice: \xff\xfe\xfd"), http.StatusBadRequest, apperrors.CodeInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil, false)
			rec := s.do(uploadRequest(t, tt.filename, tt.contentType, tt.body))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
				return
			}
			var report analysis.Report
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.NotEmpty(t, report.ID)
			if len(tt.body) > 0 {
				assert.Equal(t, 3, report.Metadata.TotalMessages)
				assert.Equal(t, []string{"Alice", "Bob"}, report.Metadata.Users)
			}
		})
	}
}

func TestAnalyzeUpload_MissingFile(t *testing.T) {
	s := newTestServer(t, nil, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, APIPrefix+"/analyze-conversation", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)

	rec = s.do(httptest.NewRequest(http.MethodPost, APIPrefix+"/analyze-conversation", strings.NewReader("raw")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeUpload_TooLarge(t *testing.T) {
	s := newTestServer(t, nil, false)
	big := bytes.Repeat([]byte("11/10/2024, 10:15 - Alice: hello\n"), (2<<20)/33)

	rec := s.do(uploadRequest(t, "chat.txt", "text/plain", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apperrors.CodePayloadTooLarge, decodeError(t, rec).Code)
}

func TestAnalyzeUpload_AnalysisFailure(t *testing.T) {
	s := newTestServer(t, failingAnalyzer{err: apperrors.ClassifyError(errors.New("model exploded"), analysis.StageEnrich)}, false)

	rec := s.do(uploadRequest(t, "chat.txt", "text/plain", []byte(export)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeInternal, e.Code)
	assert.Contains(t, e.Error, "Error processing chat")
	assert.Contains(t, e.Error, "model exploded")
}

func encryptedRequest(t *testing.T, p envelope.Payload) *http.Request {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, APIPrefix+"/analyze-conversation-encrypted", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAnalyzeEncrypted(t *testing.T) {
	s := newTestServer(t, nil, true)

	p, err := envelope.Encrypt(s.keys.PublicKey, []byte(export))
	require.NoError(t, err)

	rec := s.do(encryptedRequest(t, p))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Metadata.TotalMessages)
}

func TestAnalyzeEncrypted_Errors(t *testing.T) {
	s := newTestServer(t, nil, true)

	other, err := envelope.GenerateKeyPair()
	require.NoError(t, err)
	wrongKey, err := envelope.Encrypt(other.PublicKey, []byte(export))
	require.NoError(t, err)
	notUTF8, err := envelope.Encrypt(s.keys.PublicKey, []byte{0xc3, 0x28, 0xa0, 0xa1})
	require.NoError(t, err)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   apperrors.ErrorCode
	}{
		{"wrong recipient", encryptedRequest(t, wrongKey), http.StatusBadRequest, apperrors.CodeDecryptionFailed},
		{"not utf-8", encryptedRequest(t, notUTF8), http.StatusBadRequest, apperrors.CodeInvalidEncoding},
		{"missing fields", encryptedRequest(t, envelope.Payload{Nonce: "abc"}), http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"bad json", httptest.NewRequest(http.MethodPost, APIPrefix+"/analyze-conversation-encrypted", strings.NewReader("{")), http.StatusBadRequest, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestAnalyzeEncrypted_NoKey(t *testing.T) {
	s := newTestServer(t, nil, false)
	p, err := envelope.Encrypt(s.keys.PublicKey, []byte(export))
	require.NoError(t, err)

	rec := s.do(encryptedRequest(t, p))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apperrors.CodeKeyNotConfigured, decodeError(t, rec).Code)
}

func TestRecoverer(t *testing.T) {
	s := newTestServer(t, panickingAnalyzer{}, false)
	rec := s.do(uploadRequest(t, "chat.txt", "text/plain", []byte(export)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(context.Context, string) (*analysis.Report, error) {
	panic("boom")
}
