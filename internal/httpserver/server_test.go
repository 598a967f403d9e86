package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docombos/docombos/apps/go-server/assets"
	"github.com/docombos/docombos/apps/go-server/internal/game"
	"github.com/docombos/docombos/apps/go-server/internal/session"
	"github.com/docombos/docombos/apps/go-server/internal/store"
	"github.com/docombos/docombos/apps/go-server/internal/wire"
)

func testRules() game.Rules {
	r := game.DefaultRules()
	r.StartCash = 100
	r.CashCap = 100
	r.ActionCooldown = 0
	r.StartDelay = 10 * time.Millisecond
	r.TickInterval = 5 * time.Millisecond
	return r
}

func newTestServer(t *testing.T, rules game.Rules) (*httptest.Server, store.Store) {
	t.Helper()
	return newTestServerWith(t, Config{Rules: rules})
}

func newTestServerWith(t *testing.T, cfg Config) (*httptest.Server, store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	migrations, err := assets.Migrations()
	require.NoError(t, err)
	for _, m := range migrations {
		_, err := db.Exec(m.SQL)
		require.NoError(t, err, m.Name)
	}

	st := store.NewMemoryStore()
	srv := New(st, db, cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown()
		_ = db.Close()
	})
	return ts, st
}

func postJSON(t *testing.T, url string, body any, header http.Header) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func getJSON(t *testing.T, url string, header http.Header, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func createRoom(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	res := postJSON(t, ts.URL+"/rooms", map[string]any{}, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var body createRoomRes
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotEmpty(t, body.RoomID)
	return body.RoomID
}

func dial(t *testing.T, ts *httptest.Server, room, nickname string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rooms/" + room + "/ws?nickname=" + nickname
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

// readUntil returns the payload of the first frame of type want. Binary
// frames count as sync.
func readUntil(t *testing.T, conn *websocket.Conn, want wire.Type) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %q", want)
		if kind == websocket.BinaryMessage {
			if want == wire.TypeSync {
				return data
			}
			continue
		}
		var env wire.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Type == want {
			return env.Payload
		}
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, testRules())
	var body map[string]bool
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/health", nil, &body))
	assert.True(t, body["ok"])
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/nope", nil, nil))
}

func TestAuthFlow(t *testing.T) {
	ts, _ := newTestServer(t, testRules())
	creds := map[string]string{"username": "alice_1", "password": "correct-horse"}

	res := postJSON(t, ts.URL+"/auth/signup", creds, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var signup struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&signup))
	require.NotEmpty(t, signup.Token)

	res = postJSON(t, ts.URL+"/auth/signup", creds, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res = postJSON(t, ts.URL+"/auth/login", map[string]string{"username": "alice_1", "password": "wrong-password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	auth := http.Header{"Authorization": {"Bearer " + signup.Token}}
	var me authUser
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/auth/me", auth, &me))
	assert.Equal(t, authUser{ID: signup.ID, Username: "alice_1"}, me)

	assert.Equal(t, http.StatusUnauthorized, getJSON(t, ts.URL+"/auth/me", nil, nil))
	assert.Equal(t, http.StatusUnauthorized,
		getJSON(t, ts.URL+"/auth/me", http.Header{"Authorization": {"Bearer junk"}}, nil))

	res = postJSON(t, ts.URL+"/auth/signup", map[string]string{"username": "x", "password": "short"}, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRooms_CreateAndList(t *testing.T) {
	ts, st := newTestServer(t, testRules())
	id := createRoom(t, ts)

	var rooms []session.Info
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/rooms", nil, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, id, rooms[0].ID)
	assert.Equal(t, session.PhaseWaiting, rooms[0].Phase)

	var one session.Info
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/rooms/"+id, nil, &one))
	assert.Equal(t, id, one.ID)
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/rooms/missing", nil, nil))

	_, err := st.Get(context.Background(), id)
	assert.NoError(t, err)
}

func TestRoomWebsocket_UnknownRoom(t *testing.T) {
	ts, _ := newTestServer(t, testRules())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rooms/missing/ws"
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRoomWebsocket_Match(t *testing.T) {
	rules := testRules()
	rules.ScoreGoal = 6
	ts, _ := newTestServer(t, rules)
	room := createRoom(t, ts)

	alice := dial(t, ts, room, "alice")
	var joined wire.JoinedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, alice, wire.TypeJoined), &joined))
	assert.Equal(t, game.PlayerID(1), joined.Player)

	bob := dial(t, ts, room, "bob")
	require.NoError(t, json.Unmarshal(readUntil(t, bob, wire.TypeJoined), &joined))
	assert.Equal(t, game.PlayerID(2), joined.Player)
	assert.Len(t, joined.Players, 2)

	send(t, alice, `{"type":"ready"}`)
	send(t, bob, `{"type":"ready"}`)
	readUntil(t, alice, wire.TypeStart)
	readUntil(t, bob, wire.TypeStart)

	frame := readUntil(t, bob, wire.TypeSync)
	snap, err := wire.DecodeSnapshot(frame)
	require.NoError(t, err)
	assert.InDelta(t, 100, snap.Cash, 1)

	// malformed input is answered without touching the room
	send(t, bob, `{"type":"teleport"}`)
	var bad wire.ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, wire.TypeError), &bad))
	assert.Contains(t, bad.Reason, "unknown type")

	send(t, alice, `{"type":"claim","payload":{"x":2,"y":2,"price":6}}`)
	var claimed wire.ActionPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, wire.TypeClaimed), &claimed))
	assert.Equal(t, wire.ActionPayload{Player: 1, X: 2, Y: 2, Price: 6}, claimed)

	var win wire.WinPayload
	require.NoError(t, json.Unmarshal(readUntil(t, bob, wire.TypeWin), &win))
	assert.Equal(t, game.PlayerID(1), win.Player)

	require.Eventually(t, func() bool {
		var recent []map[string]any
		return getJSON(t, ts.URL+"/results/recent", nil, &recent) == http.StatusOK && len(recent) == 1
	}, 3*time.Second, 20*time.Millisecond)

	var lb struct {
		Top []struct {
			Nickname string `json:"nickname"`
			Wins     int    `json:"wins"`
		} `json:"top"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/results/leaderboard", nil, &lb))
	require.NotEmpty(t, lb.Top)
	assert.Equal(t, "alice", lb.Top[0].Nickname)
	assert.Equal(t, 1, lb.Top[0].Wins)
}

func TestRoomWebsocket_RoomClosesWhenEmpty(t *testing.T) {
	ts, st := newTestServer(t, testRules())
	room := createRoom(t, ts)

	conn := dial(t, ts, room, "solo")
	readUntil(t, conn, wire.TypeJoined)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		_, err := st.Get(context.Background(), room)
		return err != nil
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSanitizeNickname(t *testing.T) {
	assert.Equal(t, "bob_the-3rd", sanitizeNickname("  bob_the-3rd "))
	assert.Equal(t, "alert1", sanitizeNickname("<alert>(1)"))
	assert.Equal(t, strings.Repeat("a", maxNicknameLen), sanitizeNickname(strings.Repeat("a", 40)))
	assert.Equal(t, "", sanitizeNickname("!!!"))
}

func TestRooms_IdleRoomIsDropped(t *testing.T) {
	ts, st := newTestServerWith(t, Config{Rules: testRules(), RoomIdleTimeout: 30 * time.Millisecond})
	room := createRoom(t, ts)

	require.Eventually(t, func() bool {
		_, err := st.Get(context.Background(), room)
		return errors.Is(err, store.ErrNotFound)
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/rooms/"+room, nil, nil))
}
