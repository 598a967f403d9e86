package broker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docombos/docombos/apps/go-server/internal/game"
	"github.com/docombos/docombos/apps/go-server/internal/wire"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	drained  bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublish(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc)

	require.NoError(t, p.Publish("abc", wire.Countdown(5)))
	require.NoError(t, p.Publish("abc", wire.Sync(game.Snapshot{})))
	require.NoError(t, p.Close())

	require.Len(t, fc.subjects, 1)
	assert.Equal(t, "docombos.room.abc", fc.subjects[0])
	assert.JSONEq(t, `{"type":"countdown","payload":{"seconds":5}}`, string(fc.payloads[0]))
	assert.True(t, fc.drained)
}

func TestPingReply(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	var got map[string]any
	require.NoError(t, json.Unmarshal(pingReply([]byte(`{"client_ping":5}`), now), &got))
	assert.Equal(t, float64(5), got["client_ping"])
	assert.Equal(t, float64(1_700_000_000_000), got["server_ping"])

	require.NoError(t, json.Unmarshal(pingReply([]byte(`garbage`), now), &got))
	assert.Contains(t, got, "server_ping")
}
