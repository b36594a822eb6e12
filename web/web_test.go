package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/afumu/watrace/internal/config"
	"github.com/afumu/watrace/internal/importer"
	"github.com/afumu/watrace/internal/ingest"
	"github.com/afumu/watrace/internal/model"
	"github.com/afumu/watrace/internal/parser"
	"github.com/afumu/watrace/internal/workspace"
	"github.com/afumu/watrace/store"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatExport = `31/12/2023, 22:00 - Alice: Happy new year soon
1/1/2024, 10:00 - Alice: Hi Bob
1/1/2024, 10:05 - Bob: Hello Alice
1/1/2024, 16:00 - Alice: Dinner tonight?
`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	s, err := store.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	in := ingest.New(s, importer.New(0), ingest.Options{Parser: parser.DefaultOptions()})
	return NewService(s, in, workspace.NewMachine(), &Config{ListenAddr: "127.0.0.1:0", MaxUploadBytes: 1 << 20})
}

func do(t *testing.T, svc *Service, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	svc.GetRouter().ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func get(t *testing.T, svc *Service, url string) (*httptest.ResponseRecorder, envelope) {
	return do(t, svc, httptest.NewRequest(http.MethodGet, url, nil))
}

func postJSON(t *testing.T, svc *Service, url string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return do(t, svc, req)
}

func upload(t *testing.T, svc *Service, url, name, content string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(t, svc, req)
}

func importSample(t *testing.T, svc *Service) int64 {
	t.Helper()
	w, env := upload(t, svc, "/api/v1/chats/import", "WhatsApp Chat with Bob.txt", chatExport)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res model.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, 4, res.Parsed)
	return res.Chat.ID
}

func TestHealthAndRequestID(t *testing.T) {
	svc := newTestService(t)

	w, _ := get(t, svc, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w, env := do(t, svc, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", env.Error.RequestID)
}

func TestImportAndQuery(t *testing.T) {
	svc := newTestService(t)
	id := importSample(t, svc)

	_, env := get(t, svc, "/api/v1/workspace")
	var snap workspace.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, workspace.Snapshot{State: workspace.KindReady, ChatID: id}, snap)

	_, env = get(t, svc, "/api/v1/chats")
	var chats []*model.Chat
	require.NoError(t, json.Unmarshal(env.Data, &chats))
	require.Len(t, chats, 1)
	assert.Equal(t, "Bob", chats[0].Name)

	_, env = get(t, svc, "/api/v1/chats/1/years")
	var years []int
	require.NoError(t, json.Unmarshal(env.Data, &years))
	assert.Equal(t, []int{2023, 2024}, years)

	_, env = get(t, svc, "/api/v1/chats/1/persons")
	var persons []*model.Participant
	require.NoError(t, json.Unmarshal(env.Data, &persons))
	require.Len(t, persons, 2)
	assert.Equal(t, "Alice", persons[0].Name)

	_, env = get(t, svc, "/api/v1/chats/1/messages?year=2024&limit=2")
	var msgs []*model.Message
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hi Bob", msgs[0].Text)

	_, env = get(t, svc, "/api/v1/chats/1/messages?keyword=dinner")
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Dinner tonight?", msgs[0].Text)
}

func TestAnalysisEndpoints(t *testing.T) {
	svc := newTestService(t)
	importSample(t, svc)

	w, env := get(t, svc, "/api/v1/analysis/1/response_times?year=2024")
	require.Equal(t, http.StatusOK, w.Code)
	var rt model.ResponseTimeStats
	require.NoError(t, json.Unmarshal(env.Data, &rt))
	require.Len(t, rt.Persons, 2)
	assert.Equal(t, "Bob", rt.Persons[1].Name)
	assert.InDelta(t, 5.0, rt.Persons[1].AverageMinute, 0.001)
	assert.InDelta(t, 355.0, rt.Persons[0].AverageMinute, 0.001)

	w, env = get(t, svc, "/api/v1/analysis/1/report")
	require.Equal(t, http.StatusOK, w.Code)
	var report model.Report
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, int64(1), report.ChatID)
	assert.Equal(t, 4, report.Overview.TotalMessages)

	w, _ = get(t, svc, "/api/v1/analysis/1/astrology")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = get(t, svc, "/api/v1/analysis/9/overview")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = get(t, svc, "/api/v1/analysis/abc/overview")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkspaceYearSelection(t *testing.T) {
	svc := newTestService(t)

	w, _ := postJSON(t, svc, "/api/v1/workspace/year", yearBody(2024))
	assert.Equal(t, http.StatusConflict, w.Code)

	importSample(t, svc)

	w, _ = postJSON(t, svc, "/api/v1/workspace/year", yearBody(2019))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := postJSON(t, svc, "/api/v1/workspace/year", yearBody(2023))
	require.Equal(t, http.StatusOK, w.Code)
	var snap workspace.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 2023, snap.Year)

	// 未指定 year 时沿用工作区中的年份
	_, env = get(t, svc, "/api/v1/analysis/1/overview")
	var ov model.Overview
	require.NoError(t, json.Unmarshal(env.Data, &ov))
	assert.Equal(t, 1, ov.TotalMessages)

	_, env = get(t, svc, "/api/v1/analysis/1/overview?year=0")
	require.NoError(t, json.Unmarshal(env.Data, &ov))
	assert.Equal(t, 4, ov.TotalMessages)
}

func yearBody(year int) map[string]int {
	return map[string]int{"year": year}
}

func TestImportFailures(t *testing.T) {
	svc := newTestService(t)

	w, env := upload(t, svc, "/api/v1/chats/import", "photo.jpg", "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	_, env = get(t, svc, "/api/v1/workspace")
	var snap workspace.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, workspace.KindFailed, snap.State)
	assert.Equal(t, "photo.jpg", snap.Source)

	w, _ = upload(t, svc, "/api/v1/chats/import", "notes.txt", "no messages here\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = upload(t, svc, "/api/v1/chats/import?replace_all=maybe", "chat.txt", chatExport)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/import", nil)
	w, _ = do(t, svc, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReparseDeleteAndClear(t *testing.T) {
	svc := newTestService(t)
	id := importSample(t, svc)

	w, env := postJSON(t, svc, "/api/v1/chats/1/reparse", map[string]bool{"join_continuations": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res model.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, id, res.Chat.ID)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/chats/1", nil)
	w, _ = do(t, svc, req)
	assert.Equal(t, http.StatusOK, w.Code)

	_, env = get(t, svc, "/api/v1/workspace")
	var snap workspace.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, workspace.KindEmpty, snap.State)

	w, _ = get(t, svc, "/api/v1/chats/1")
	assert.Equal(t, http.StatusNotFound, w.Code)

	importSample(t, svc)
	w, _ = do(t, svc, httptest.NewRequest(http.MethodDelete, "/api/v1/data", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	_, env = get(t, svc, "/api/v1/system/status")
	var status struct {
		Store *model.StoreStatus `json:"store"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Zero(t, status.Store.Chats)
	assert.Zero(t, status.Store.Messages)
}

func TestExportEndpoint(t *testing.T) {
	svc := newTestService(t)
	importSample(t, svc)

	w, _ := get(t, svc, "/api/v1/export/1?format=txt&year=2024")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Bob_2024.txt")
	assert.Equal(t, "1/1/2024, 10:00 - Alice: Hi Bob\n1/1/2024, 10:05 - Bob: Hello Alice\n1/1/2024, 16:00 - Alice: Dinner tonight?\n", w.Body.String())

	w, _ = get(t, svc, "/api/v1/export/1?format=pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordProtection(t *testing.T) {
	svc := newTestService(t)
	_, err := config.Load(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	w, _ := postJSON(t, svc, "/api/v1/system/password/set", map[string]string{"new_password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = get(t, svc, "/api/v1/chats")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = get(t, svc, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = postJSON(t, svc, "/api/v1/system/password/verify", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := postJSON(t, svc, "/api/v1/system/password/verify", map[string]string{"password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	var unlocked struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &unlocked))
	require.NotEmpty(t, unlocked.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
	req.Header.Set("X-Auth-Token", unlocked.Token)
	w, _ = do(t, svc, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
