// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/skill-catalog/internal/catalog"
	"github.com/pdiddy/skill-catalog/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const robinCSV = `キャラクター名,ロビン
属性,物理
運命,調和
バージョン,2.2
戦闘スキル,アリア,味方全体の与ダメージ+50%、3ターン継続
天賦,調べ,味方全体の会心ダメージ+20%
星魂4,共鳴,協奏状態中、敵の防御力を15%無視する
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := catalog.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ts := httptest.NewServer(New(store, types.ServerConfig{}, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func multipartBody(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, ts *httptest.Server, path, field, content string) (int, map[string]any) {
	t.Helper()
	body, contentType := multipartBody(t, field, content)
	resp, err := ts.Client().Post(ts.URL+path, contentType, body)
	require.NoError(t, err)
	return decode(t, resp)
}

func do(t *testing.T, ts *httptest.Server, method, path string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return decode(t, resp)
}

func decode(t *testing.T, resp *http.Response) (int, map[string]any) {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestUploadAndQuery(t *testing.T) {
	ts := newTestServer(t)

	status, body := upload(t, ts, "/api/upload", "csv", robinCSV)
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 3, body["skills"])
	assert.EqualValues(t, 3, body["effects"])
	assert.EqualValues(t, 1, body["eidolon_enhancements"])
	assert.NotEmpty(t, body["upload_id"])
	character := body["character"].(map[string]any)
	assert.Equal(t, "ロビン", character["name"])
	id := int64(character["id"].(float64))

	status, body = do(t, ts, http.MethodGet, "/api/characters")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["characters"], 1)

	status, body = do(t, ts, http.MethodGet, fmt.Sprintf("/api/characters/%d", id))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "物理", body["character"].(map[string]any)["element"])

	status, body = do(t, ts, http.MethodGet, fmt.Sprintf("/api/characters/%d/skills", id))
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["combat_skills"], 2)
	assert.Len(t, body["additional_effects"], 0)
	assert.Len(t, body["eidolons"], 1)

	status, body = do(t, ts, http.MethodGet, fmt.Sprintf("/api/characters/%d/buffs", id))
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["eidolon_level"])
	assert.Len(t, body["buffs_debuffs"], 2)

	status, body = do(t, ts, http.MethodGet, fmt.Sprintf("/api/characters/%d/buffs?eidolon=4", id))
	require.Equal(t, http.StatusOK, status)
	buffs := body["buffs_debuffs"].([]any)
	require.Len(t, buffs, 3)
	last := buffs[2].(map[string]any)
	assert.Equal(t, "eidolon-4", last["skill"])
	assert.Equal(t, "eidolon 4", last["note"])

	status, body = do(t, ts, http.MethodDelete, fmt.Sprintf("/api/characters/%d", id))
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, id, body["deletedCharacterId"])

	status, body = do(t, ts, http.MethodGet, fmt.Sprintf("/api/characters/%d", id))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestReuploadReplaces(t *testing.T) {
	ts := newTestServer(t)

	status, _ := upload(t, ts, "/api/upload", "csv", robinCSV)
	require.Equal(t, http.StatusOK, status)

	status, body := upload(t, ts, "/api/upload", "csv", "キャラクター名,ロビン\n天賦,調べ,味方全体の会心ダメージ+25%\n")
	require.Equal(t, http.StatusOK, status)
	id := int64(body["character"].(map[string]any)["id"].(float64))

	_, body = do(t, ts, http.MethodGet, "/api/characters")
	assert.Len(t, body["characters"], 1)

	_, body = do(t, ts, http.MethodGet, fmt.Sprintf("/api/characters/%d/buffs?eidolon=6", id))
	buffs := body["buffs_debuffs"].([]any)
	require.Len(t, buffs, 1)
	assert.Equal(t, "+25%", buffs[0].(map[string]any)["value"])
}

func TestUploadErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		field   string
		content string
	}{
		{"wrong field", "file", robinCSV},
		{"empty file", "csv", ""},
		{"no character name", "csv", "属性,物理\n戦闘スキル,アリア,説明\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := upload(t, ts, "/api/upload", tt.field, tt.content)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRouteStatus(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/characters", http.StatusOK},
		{http.MethodGet, "/api/characters/abc", http.StatusBadRequest},
		{http.MethodGet, "/api/characters/0", http.StatusBadRequest},
		{http.MethodGet, "/api/characters/99", http.StatusNotFound},
		{http.MethodDelete, "/api/characters/99", http.StatusNotFound},
		{http.MethodGet, "/api/characters/99/skills", http.StatusNotFound},
		{http.MethodGet, "/api/characters/99/buffs", http.StatusNotFound},
		{http.MethodGet, "/api/characters/1/buffs?eidolon=7", http.StatusBadRequest},
		{http.MethodGet, "/api/characters/1/buffs?eidolon=x", http.StatusBadRequest},
		{http.MethodPost, "/api/characters", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/upload", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, _ := do(t, ts, tt.method, tt.path)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestUpdateStats(t *testing.T) {
	ts := newTestServer(t)
	status, _ := upload(t, ts, "/api/upload", "csv", robinCSV)
	require.Equal(t, http.StatusOK, status)

	stats := "キャラクター名,HP,攻撃力,防御力,速度,EP,ステータスブースト1種別,ステータスブースト1数値,ステータスブースト2種別,ステータスブースト2数値,ステータスブースト3種別,ステータスブースト3数値\n" +
		"ロビン,1281,640,485,102,160,攻撃力%,28,HP%,18,速度,5\n" +
		"誰か,1,1,1,1,1,,,,,,\n"

	for _, field := range []string{"csvFile", "csv"} {
		t.Run(field, func(t *testing.T) {
			status, body := upload(t, ts, "/api/update-stats", field, stats)
			require.Equal(t, http.StatusOK, status, "body: %v", body)
			assert.Equal(t, []any{"ロビン"}, body["updated_characters"])
			assert.Equal(t, []any{"誰か"}, body["not_found_characters"])
		})
	}

	status, body := upload(t, ts, "/api/update-stats", "csvFile", "name,hp\n")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["details"], "header")
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t)

	post := func(body string) (int, map[string]any) {
		resp, err := ts.Client().Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		return decode(t, resp)
	}

	status, body := post(`{"category":"combat skill","description":"grants all allies damage dealt +30% for 2 turns"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "combat-skill", body["category"])
	effects := body["effects"].([]any)
	require.Len(t, effects, 1)
	assert.Equal(t, "2-turns", effects[0].(map[string]any)["duration"])

	status, body = post(`{"category":"通常攻撃","description":"敵単体にダメージ"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["effects"])

	status, _ = post(`{"category":"passive","description":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(`not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

// failingCatalog fails every call it implements; the rest panic.
type failingCatalog struct {
	Catalog
}

func (failingCatalog) Characters(context.Context) ([]types.Character, error) {
	return nil, errors.New("disk on fire")
}

func (failingCatalog) Character(context.Context, int64) (types.Character, error) {
	panic("unexpected call")
}

func TestStoreFailure(t *testing.T) {
	ts := httptest.NewServer(New(failingCatalog{}, types.ServerConfig{}, nil).Handler())
	defer ts.Close()

	status, body := do(t, ts, http.MethodGet, "/api/characters")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "disk on fire", body["details"])

	status, body = do(t, ts, http.MethodGet, "/api/characters/1")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	store, err := catalog.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(store, types.ServerConfig{ShutdownTimeout: time.Second}, nil).Serve(ctx, ln)
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/characters")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
