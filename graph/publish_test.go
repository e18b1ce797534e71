package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs       []published
	publishErr error
	flushes    int
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.msgs = append(c.msgs, published{subject: subject, data: data})
	return nil
}

func (c *fakeConn) FlushWithContext(ctx context.Context) error {
	c.flushes++
	return ctx.Err()
}

func testMessage(modules ...string) *ShapeGraphMessage {
	return &ShapeGraphMessage{
		ID:          "msg-1",
		RunID:       "run-1",
		Source:      "onto.ttl",
		Mode:        "single",
		Format:      "turtle",
		MIMEType:    "text/turtle",
		Modules:     modules,
		ShapeCount:  2,
		Body:        "@prefix sh: <http://www.w3.org/ns/shacl#> .\n",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "", nil)

	require.NoError(t, p.Publish(context.Background(), testMessage("agent", "grant")))
	require.Len(t, conn.msgs, 1)
	assert.Equal(t, DefaultSubject, conn.msgs[0].subject)
	assert.Equal(t, 1, conn.flushes)

	var decoded ShapeGraphMessage
	require.NoError(t, json.Unmarshal(conn.msgs[0].data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, []string{"agent", "grant"}, decoded.Modules)
	assert.Equal(t, 2, decoded.ShapeCount)
}

func TestPublisher_SingleModuleSubject(t *testing.T) {
	p := NewPublisher(&fakeConn{}, "shapes.out", nil)

	assert.Equal(t, "shapes.out.skg-o", p.Subject(testMessage("skg-o")))
	assert.Equal(t, "shapes.out.v1_2", p.Subject(testMessage("v1.2")))
	assert.Equal(t, "shapes.out", p.Subject(testMessage("a", "b")))
}

func TestPublisher_Errors(t *testing.T) {
	t.Run("invalid message", func(t *testing.T) {
		conn := &fakeConn{}
		msg := testMessage("agent")
		msg.Body = ""

		err := NewPublisher(conn, "", nil).Publish(context.Background(), msg)
		require.Error(t, err)
		assert.Empty(t, conn.msgs)
	})

	t.Run("publish failure", func(t *testing.T) {
		conn := &fakeConn{publishErr: errors.New("connection closed")}

		err := NewPublisher(conn, "", nil).Publish(context.Background(), testMessage("agent"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection closed")
	})

	t.Run("cancelled flush", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewPublisher(&fakeConn{}, "", nil).Publish(ctx, testMessage("agent"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPublisher_NilConn(t *testing.T) {
	p := NewPublisher(nil, "", nil)
	assert.NoError(t, p.Publish(context.Background(), testMessage()))
}
