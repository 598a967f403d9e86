// apps/go-server/internal/broker/broker.go
//
// Optional NATS mirror of room traffic.
// Responsibilities:
//   - Connect with the shared reconnect policy.
//   - Publish every room broadcast as its JSON envelope on
//     docombos.room.<id>, so spectators and bots can follow a match without
//     holding a seat.
//   - Answer docombos.ping with the server clock.
//
// Binary sync frames are per-seat and never mirrored.

package broker

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/docombos/docombos/apps/go-server/internal/wire"
)

const (
	subjectPrefix = "docombos.room."
	pingSubject   = "docombos.ping"
)

// Subject is the NATS subject a room's broadcasts go to.
func Subject(room string) string { return subjectPrefix + room }

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// Publisher mirrors room broadcasts to NATS.
type Publisher struct {
	nc   conn
	raw  *nats.Conn
	name string
}

// Connect dials url and returns a ready Publisher.
func Connect(url, name string) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", nc.ConnectedUrl()).Str("name", name).Msg("nats connected")
	return &Publisher{nc: nc, raw: nc, name: name}, nil
}

func newPublisher(c conn) *Publisher { return &Publisher{nc: c} }

// Publish sends m to the subject of room.
func (p *Publisher) Publish(room string, m wire.Message) error {
	if m.IsBinary() {
		return nil
	}
	data, err := wire.Encode(m)
	if err != nil {
		return err
	}
	return p.nc.Publish(Subject(room), data)
}

// ServePing answers requests on docombos.ping.
func (p *Publisher) ServePing() error {
	if p.raw == nil {
		return nil
	}
	_, err := p.raw.Subscribe(pingSubject, func(m *nats.Msg) {
		if m.Reply == "" {
			return
		}
		if err := p.raw.Publish(m.Reply, pingReply(m.Data, time.Now())); err != nil {
			log.Warn().Err(err).Msg("ping reply")
		}
	})
	return err
}

// pingReply echoes the request object with server_ping set.
func pingReply(data []byte, now time.Time) []byte {
	payload := map[string]any{}
	_ = json.Unmarshal(data, &payload)
	payload["server_ping"] = now.UnixMilli()
	out, _ := json.Marshal(payload)
	return out
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
