package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sweetshop/internal/broadcast"
)

type fakeFrameWriter struct {
	deadline time.Time
	frames   [][]byte
	types    []int
	writeErr error
}

func (f *fakeFrameWriter) SetWriteDeadline(t time.Time) error {
	f.deadline = t
	return nil
}

func (f *fakeFrameWriter) WriteMessage(messageType int, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.types = append(f.types, messageType)
	f.frames = append(f.frames, data)
	return nil
}

func TestWSHandler_PlainGetRequiresUpgrade(t *testing.T) {
	hub := broadcast.NewHub(zap.NewNop())
	h := NewWSHandler(hub, time.Second, zap.NewNop())

	app := fiber.New()
	app.Get("/ws", h.Upgrade, h.Listen())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ws", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	assert.Equal(t, 0, hub.Len())
}

func TestWSListener_SendSetsDeadlineAndWritesText(t *testing.T) {
	w := &fakeFrameWriter{}
	l := &wsListener{id: "l1", conn: w, writeTimeout: 5 * time.Second}

	before := time.Now()
	require.NoError(t, l.Send([]byte(`{"type":"sweet.created"}`)))

	assert.True(t, w.deadline.After(before.Add(4*time.Second)))
	require.Len(t, w.frames, 1)
	assert.Equal(t, websocket.TextMessage, w.types[0])
	assert.JSONEq(t, `{"type":"sweet.created"}`, string(w.frames[0]))
}

func TestWSListener_NoDeadlineWithoutTimeout(t *testing.T) {
	w := &fakeFrameWriter{}
	l := &wsListener{id: "l1", conn: w}

	require.NoError(t, l.Send([]byte("x")))
	assert.True(t, w.deadline.IsZero())
}

func TestWSListener_FailedSendIsPrunedByHub(t *testing.T) {
	hub := broadcast.NewHub(zap.NewNop())
	healthy := &fakeFrameWriter{}
	hub.Subscribe(&wsListener{id: "ok", conn: healthy, writeTimeout: time.Second})
	hub.Subscribe(&wsListener{id: "gone", conn: &fakeFrameWriter{writeErr: errors.New("broken pipe")}, writeTimeout: time.Second})

	delivered := hub.Broadcast([]byte("x"))

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, hub.Len())
	assert.Len(t, healthy.frames, 1)
}
