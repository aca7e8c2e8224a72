package handler_test

import (
	"context"
	"io"
	"net"
	"net/url"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fotoowl-gallery-api/internal/dto"
	"github.com/noah-isme/fotoowl-gallery-api/internal/eventbus"
	"github.com/noah-isme/fotoowl-gallery-api/internal/handler"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
)

func startStreamServer(t *testing.T, stack *localStack) string {
	t.Helper()

	logger := zerolog.New(io.Discard)
	streams := service.NewStreamService(stack.interactions, stack.bus, time.Second, logger)
	handler.NewStreamHandler(streams, logger).Register(stack.app.Group("/ws"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = stack.app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = stack.app.ShutdownWithTimeout(time.Second)
	})
	return ln.Addr().String()
}

func dialStream(t *testing.T, addr, imageID string) *gorillaws.Conn {
	t.Helper()

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws/stream"}
	if imageID != "" {
		u.RawQuery = url.Values{"image_id": {imageID}}.Encode()
	}
	conn, _, err := gorillaws.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readStreamMessage(t *testing.T, conn *gorillaws.Conn) dto.StreamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var message dto.StreamMessage
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

func TestStreamHandler_SnapshotThenLiveUpdates(t *testing.T) {
	stack := newLocalStack(t)
	ctx := context.Background()

	session, err := stack.interactions.Open(ctx, "img-1")
	require.NoError(t, err)
	defer session.Close()
	_, err = session.AddReaction(ctx, "👍", visitor)
	require.NoError(t, err)

	addr := startStreamServer(t, stack)
	conn := dialStream(t, addr, "img-1")

	snapshot := readStreamMessage(t, conn)
	require.Equal(t, "snapshot", snapshot.Type)
	require.NotNil(t, snapshot.Interactions)
	require.Len(t, snapshot.Interactions.Reactions, 1)

	_, err = session.AddReaction(ctx, "🎉", visitor)
	require.NoError(t, err)

	live := readStreamMessage(t, conn)
	require.Equal(t, string(eventbus.KindReactionAdded), live.Type)
	require.Equal(t, "img-1", live.ImageID)
	require.NotNil(t, live.Reaction)
	require.Equal(t, "🎉", live.Reaction.Emoji)

	other, err := stack.interactions.Open(ctx, "img-2")
	require.NoError(t, err)
	defer other.Close()
	_, err = other.AddComment(ctx, "elsewhere", visitor)
	require.NoError(t, err)
	comment, err := session.AddComment(ctx, "here", visitor)
	require.NoError(t, err)

	next := readStreamMessage(t, conn)
	require.Equal(t, string(eventbus.KindCommentAdded), next.Type)
	require.NotNil(t, next.Comment)
	require.Equal(t, comment.ID, next.Comment.ID)
}

func TestStreamHandler_RequiresImageID(t *testing.T) {
	stack := newLocalStack(t)
	addr := startStreamServer(t, stack)
	conn := dialStream(t, addr, "")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	require.True(t, gorillaws.IsCloseError(err, gorillaws.ClosePolicyViolation))
}
