package inspect

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bombpot/sdk/solver"
)

func newTestSolver(t *testing.T, iterations int) *solver.Solver {
	t.Helper()
	cfg := solver.DefaultConfig()
	cfg.Seats = 3
	cfg.Seed = 5
	cfg.ProgressInterval = 0
	s, err := solver.New(cfg)
	require.NoError(t, err)
	for i := 0; i < iterations; i++ {
		require.NoError(t, s.Iterate())
	}
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, cmd string) {
	t.Helper()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(cmd)))
}

func readFrame(t *testing.T, ws *websocket.Conn) (string, []byte) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	kind, data, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)
	typ, err := PeekType(data)
	require.NoError(t, err)
	return typ, data
}

func readSnapshot(t *testing.T, ws *websocket.Conn) Snapshot {
	t.Helper()
	typ, data := readFrame(t, ws)
	require.Equal(t, TypeSnapshot, typ)
	var snap Snapshot
	require.NoError(t, Unmarshal(data, &snap))
	return snap
}

func TestValidatorParse(t *testing.T) {
	v, err := newValidator()
	require.NoError(t, err)

	valid := []string{
		`{"type":"snapshot"}`,
		`{"type":"root"}`,
		`{"type":"parent"}`,
		`{"type":"pause"}`,
		`{"type":"resume"}`,
		`{"type":"focus","path":[]}`,
		`{"type":"focus","path":["check","Th2s"]}`,
	}
	for _, raw := range valid {
		_, err := v.parse([]byte(raw))
		assert.NoError(t, err, raw)
	}

	invalid := []string{
		`not json`,
		`{}`,
		`{"type":"explode"}`,
		`{"type":"focus"}`,
		`{"type":"focus","path":[""]}`,
		`{"type":"focus","path":"check"}`,
		`{"type":"root","extra":1}`,
	}
	for _, raw := range invalid {
		_, err := v.parse([]byte(raw))
		assert.Error(t, err, raw)
	}

	cmd, err := v.parse([]byte(`{"type":"focus","path":["pot","call"]}`))
	require.NoError(t, err)
	assert.Equal(t, Command{Type: CommandFocus, Path: []string{"pot", "call"}}, cmd)
}

func TestApply(t *testing.T) {
	s := newTestSolver(t, 200)
	srv, err := New(s)
	require.NoError(t, err)

	child := s.Root().Children()[0]
	require.NoError(t, srv.Apply(Command{Type: CommandFocus, Path: child.Path()}))
	assert.Same(t, child, s.Focus())

	require.NoError(t, srv.Apply(Command{Type: CommandParent}))
	assert.Same(t, s.Root(), s.Focus())

	// Parent of the root stays at the root.
	require.NoError(t, srv.Apply(Command{Type: CommandParent}))
	assert.Same(t, s.Root(), s.Focus())

	require.NoError(t, srv.Apply(Command{Type: CommandFocus, Path: child.Path()}))
	require.NoError(t, srv.Apply(Command{Type: CommandRoot}))
	assert.Same(t, s.Root(), s.Focus())

	err = srv.Apply(Command{Type: CommandFocus, Path: []string{"fold"}})
	assert.ErrorIs(t, err, solver.ErrNoSuchNode)
	assert.ErrorIs(t, srv.Apply(Command{Type: "explode"}), ErrUnknownCommand)
}

func TestPauseResumeCommands(t *testing.T) {
	s := newTestSolver(t, 0)
	srv, err := New(s)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, srv.Apply(Command{Type: CommandPause}))
	assert.Equal(t, solver.Paused, s.State())
	require.NoError(t, srv.Apply(Command{Type: CommandResume}))
	assert.Equal(t, solver.Running, s.State())
	require.NoError(t, s.Stop())
}

func TestWebSocketCommands(t *testing.T) {
	s := newTestSolver(t, 300)
	srv, err := New(s, WithHandLimit(3))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ws := dial(t, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws")

	send(t, ws, `{"type":"snapshot"}`)
	snap := readSnapshot(t, ws)
	assert.Equal(t, "stopped", snap.State)
	assert.Equal(t, int64(300), snap.Iterations)
	assert.Equal(t, "root", snap.Node.Path)
	assert.Len(t, snap.Node.Hands, 3)
	require.NotEmpty(t, snap.Node.Children)

	send(t, ws, `{"type":"focus","path":["`+snap.Node.Children[0]+`"]}`)
	snap = readSnapshot(t, ws)
	assert.Equal(t, snap.Node.Path, s.Focus().PathString())
	assert.NotEqual(t, "root", snap.Node.Path)

	send(t, ws, `{"type":"focus","path":["fold"]}`)
	typ, data := readFrame(t, ws)
	require.Equal(t, TypeError, typ)
	var ef ErrorFrame
	require.NoError(t, Unmarshal(data, &ef))
	assert.Contains(t, ef.Message, "no such node")

	send(t, ws, `{"type":"launch"}`)
	typ, _ = readFrame(t, ws)
	assert.Equal(t, TypeError, typ)

	// Broadcast reaches connected clients.
	srv.Broadcast()
	snap = readSnapshot(t, ws)
	assert.Equal(t, s.Focus().PathString(), snap.Node.Path)
}

func TestHealth(t *testing.T) {
	srv, err := New(newTestSolver(t, 0))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestServePushesOnClockTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mClock := quartz.NewMock(t)

	s := newTestSolver(t, 50)
	srv, err := New(s, WithClock(mClock), WithRefresh(time.Second))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	ws := dial(t, "ws://"+ln.Addr().String()+"/ws")
	// Serve registers the ticker before accepting, and a reply proves the
	// connection is registered before the tick.
	send(t, ws, `{"type":"snapshot"}`)
	readSnapshot(t, ws)

	mClock.Advance(time.Second).MustWait(ctx)
	snap := readSnapshot(t, ws)
	assert.Equal(t, int64(50), snap.Iterations)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
