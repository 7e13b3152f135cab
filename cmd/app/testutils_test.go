package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/commentservice"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/imagestore"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func testConfig() *Config {
	return &Config{
		Environment:    "development",
		Version:        "test",
		JWTSecret:      "test-secret",
		TrustedOrigins: []string{"http://localhost:3000"},
		StorageDriver:  "local",
		LimiterRPS:     2,
		LimiterBurst:   4,
		LimiterEnabled: false,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newUnitApplication needs no database; only token verification works on its user service.
func newUnitApplication(t *testing.T) *application {
	tokens := userservice.NewTokenManager("test-secret", time.Hour)

	return &application{
		config:      testConfig(),
		logger:      testLogger(),
		userService: userservice.NewUserService(nil, nil, tokens, testLogger()),
	}
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mb := new(common.MockMessageProducer)
	mb.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	store, err := imagestore.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	cfg := testConfig()
	blogService := blogservice.NewBlogService(db, common.NewCache(time.Minute, 2*time.Minute), store, logger)

	app := &application{
		config:         cfg,
		logger:         logger,
		userService:    userservice.NewUserService(db, mb, userservice.NewTokenManager(cfg.JWTSecret, time.Hour), logger),
		blogService:    blogService,
		commentService: commentservice.NewCommentService(db, blogService, mb, logger),
		uploadDir:      store.Dir(),
	}

	return app, db
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env envelope
	err = json.Unmarshal(responseBody, &env)
	require.NoError(t, err, string(responseBody))

	return res.StatusCode, res.Header, env
}

func (ts *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (int, http.Header, envelope) {
	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)

	return readResponse(t, res)
}

func (ts *testServer) postJSON(t *testing.T, path, token string, data any) (int, http.Header, envelope) {
	payload, err := json.Marshal(data)
	require.NoError(t, err)

	return ts.do(t, http.MethodPost, path, token, bytes.NewReader(payload), "application/json")
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil, "")
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil, "")
}

type imageFile struct {
	name        string
	contentType string
	data        []byte
}

func pngFile(t *testing.T) *imageFile {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	return &imageFile{name: "cover.png", contentType: "image/png", data: buf.Bytes()}
}

func (ts *testServer) sendBlogForm(t *testing.T, method, path, token string, fields map[string]string, img *imageFile) (int, http.Header, envelope) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}

	if img != nil {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="image"; filename="` + img.name + `"`}
		h["Content-Type"] = []string{img.contentType}

		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(img.data)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return ts.do(t, method, path, token, &body, w.FormDataContentType())
}

// registerUser creates an account through the API and returns its token and id.
func (ts *testServer) registerUser(t *testing.T, email string) (string, string) {
	status, _, body := ts.postJSON(t, "/api/auth/register", "", map[string]string{"email": email, "password": "Test_1234!"})
	require.Equal(t, http.StatusCreated, status, body)

	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}
