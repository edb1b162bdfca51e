package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/session"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

// Solved by right, right.
var twoMoves = [][]int{
	{1, 1, 1, 1, 1, 1},
	{1, 4, 0, 2, 3, 1},
	{1, 1, 1, 1, 1, 1},
}

type testEnv struct {
	db      *storage.DB
	handler http.Handler
}

func newTestEnv(t *testing.T, store session.Store) *testEnv {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.MigrateUp())
	t.Cleanup(func() { db.Close() })

	srv := New(Deps{DB: db, Sessions: store, ShareURL: "https://sokodle.test"})
	return &testEnv{db: db, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) addDaily(t *testing.T, date string, grid [][]int) int64 {
	t.Helper()
	level, err := storage.NewDailyLevelRepository(e.db).Create(context.Background(), date, sokoban.GridFromInts(grid))
	require.NoError(t, err)
	return level.DailyID
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
}

func TestDailyLevel(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.addDaily(t, "2026-10-18", twoMoves)

	rr := env.do(t, http.MethodGet, "/api/daily-level?date=2026-10-18", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[dailyLevelResp](t, rr)
	assert.Equal(t, id, resp.DailyID)
	assert.Equal(t, 1, resp.Number)
	assert.Equal(t, sokoban.GridFromInts(twoMoves), resp.Layout)

	rr = env.do(t, http.MethodGet, "/api/daily-level", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/daily-level?date=2000-01-01", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAttempt(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.addDaily(t, "2026-10-18", twoMoves)

	body := `{"levelID":` + jsonInt(id) + `,"moves":14,"timeMs":5300}`
	rr := env.do(t, http.MethodPost, "/api/attempt", body, "X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, true, decode[map[string]bool](t, rr)["success"])

	attempts, err := storage.NewAttemptRepository(env.db).ListByLevel(context.Background(), id, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "203.0.113.9", attempts[0].IPAddress)

	for _, bad := range []string{
		`{"levelID":0,"moves":1,"timeMs":1}`,
		`{"levelID":1,"moves":-1,"timeMs":1}`,
		`{"levelID":1,"moves":1,"timeMs":-5}`,
		`{"levelID":1.5,"moves":1,"timeMs":1}`,
		`{"moves":1,"timeMs":1}`,
		`not json`,
	} {
		rr := env.do(t, http.MethodPost, "/api/attempt", bad)
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}

	rr = env.do(t, http.MethodPost, "/api/attempt", `{"levelID":999,"moves":1,"timeMs":1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAttemptDefaultIP(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.addDaily(t, "2026-10-18", twoMoves)

	rr := env.do(t, http.MethodPost, "/api/attempt", `{"levelID":`+jsonInt(id)+`,"moves":2,"timeMs":10}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	attempts, err := storage.NewAttemptRepository(env.db).ListByLevel(context.Background(), id, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "0.0.0.0", attempts[0].IPAddress)
}

func TestSubmitAndListUserLevels(t *testing.T) {
	env := newTestEnv(t, nil)

	layout, _ := json.Marshal(twoMoves)
	for _, name := range []string{"ann", "bo"} {
		rr := env.do(t, http.MethodPost, "/api/submit-level", `{"user_name":"`+name+`","layout":`+string(layout)+`}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decode[submitLevelResp](t, rr)
		assert.True(t, resp.Success)
		assert.NotZero(t, resp.UserLevelID)
	}

	rr := env.do(t, http.MethodGet, "/api/user-levels", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]userLevelResp](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, "bo", list[0].UserName)

	rr = env.do(t, http.MethodGet, "/api/user-levels?offset=1&limit=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list = decode[[]userLevelResp](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, "ann", list[0].UserName)

	rr = env.do(t, http.MethodGet, "/api/user-levels?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/user-level?id="+jsonInt(list[0].UserLevelID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	one := decode[[]userLevelResp](t, rr)
	require.Len(t, one, 1)
	assert.Equal(t, sokoban.GridFromInts(twoMoves), one[0].Layout)

	rr = env.do(t, http.MethodGet, "/api/user-level?id=999", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]userLevelResp](t, rr))
}

func TestSubmitLevelRejectsBadLayouts(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/submit-level", `{"user_name":"ann"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/submit-level", `{"user_name":"ann","layout":[[4,4,2,3]]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode[errorResp](t, rr)
	require.Len(t, resp.Problems, 1)
	assert.Contains(t, resp.Problems[0], "player")

	rr = env.do(t, http.MethodPost, "/api/submit-level", `{"user_name":"ann","layout":"oops"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayDailySession(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.addDaily(t, "2026-10-18", twoMoves)

	rr := env.do(t, http.MethodPost, "/api/sessions", `{"daily_id":`+jsonInt(id)+`}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	view := decode[sessionResp](t, rr)
	assert.Equal(t, sokoban.PhaseNotPlaying, view.Phase)
	assert.Equal(t, sokoban.Position{X: 1, Y: 1}, view.Player)
	assert.Equal(t, 3, view.Rows)
	assert.Equal(t, 6, view.Cols)
	base := "/api/sessions/" + view.SessionID

	// Into the wall: rejected, play does not start.
	rr = env.do(t, http.MethodPost, base+"/move", `{"direction":"up"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	view = decode[sessionResp](t, rr)
	require.NotNil(t, view.Accepted)
	assert.False(t, *view.Accepted)
	assert.Equal(t, sokoban.PhaseNotPlaying, view.Phase)

	rr = env.do(t, http.MethodPost, base+"/move", `{"direction":"ArrowRight"}`)
	view = decode[sessionResp](t, rr)
	assert.True(t, *view.Accepted)
	assert.Equal(t, sokoban.PhasePlaying, view.Phase)
	assert.Equal(t, 1, view.Step)

	rr = env.do(t, http.MethodPost, base+"/undo", "")
	view = decode[sessionResp](t, rr)
	assert.True(t, *view.Accepted)
	assert.Equal(t, 0, view.Step)
	assert.Equal(t, sokoban.PhasePlaying, view.Phase)

	env.do(t, http.MethodPost, base+"/move", `{"target":{"x":2,"y":1}}`)
	rr = env.do(t, http.MethodPost, base+"/move", `{"direction":"d"}`)
	view = decode[sessionResp](t, rr)
	assert.Equal(t, sokoban.PhaseWon, view.Phase)
	assert.True(t, view.Recorded)
	require.NotNil(t, view.Score)
	assert.Equal(t, 2, view.Score.Moves)
	assert.True(t, strings.HasPrefix(view.Score.ShareText, "Sokodle #1 📦"))
	assert.Contains(t, view.Score.ShareText, "https://sokodle.test")

	// Won is terminal: no more moves and the score is stored once.
	rr = env.do(t, http.MethodPost, base+"/move", `{"direction":"left"}`)
	assert.False(t, *decode[sessionResp](t, rr).Accepted)

	stats, err := storage.NewAttemptRepository(env.db).Stats(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 2, stats.BestMoves)

	rr = env.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, sokoban.PhaseWon, decode[sessionResp](t, rr).Phase)
}

func TestPlayCustomLayoutAndRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	store := session.NewRedisStoreFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	env := newTestEnv(t, store)

	layout, _ := json.Marshal(twoMoves)
	rr := env.do(t, http.MethodPost, "/api/sessions", `{"layout":`+string(layout)+`}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	view := decode[sessionResp](t, rr)
	assert.Equal(t, session.KindCustom, view.Level.Kind)
	base := "/api/sessions/" + view.SessionID

	env.do(t, http.MethodPost, base+"/move", `{"direction":"right"}`)
	rr = env.do(t, http.MethodPost, base+"/restart", "")
	require.Equal(t, http.StatusOK, rr.Code)
	view = decode[sessionResp](t, rr)
	assert.Equal(t, sokoban.PhaseNotPlaying, view.Phase)
	assert.Equal(t, 0, view.Step)

	rr = env.do(t, http.MethodPost, base+"/move", `{"direction":"north"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateSessionErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/sessions", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/sessions", `{"daily_id":42}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/sessions", `{"user_level_id":42}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/sessions", `{"layout":[[0,0]]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/sessions/nope/move", `{"direction":"up"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/api/daily-level?date=2000-01-01", "")

	rr := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `route="/api/daily-level"`)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
