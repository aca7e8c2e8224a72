package service

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/dto"
	"github.com/noah-isme/fotoowl-gallery-api/internal/eventbus"
	"github.com/noah-isme/fotoowl-gallery-api/internal/observability"
)

const (
	streamSendBufferSize = 32
	streamTypeSnapshot   = "snapshot"
)

// StreamOptions wraps metadata extracted during the HTTP upgrade.
type StreamOptions struct {
	ImageID       string
	CorrelationID string
	Context       context.Context
}

// StreamService pushes live interaction updates for one image over a websocket.
type StreamService interface {
	ServeConnection(conn *websocket.Conn, opts StreamOptions)
}

type streamService struct {
	interactions InteractionService
	bus          *eventbus.Bus
	keepalive    time.Duration
	logger       zerolog.Logger
}

type streamClient struct {
	conn        *websocket.Conn
	send        chan dto.StreamMessage
	closed      chan struct{}
	once        sync.Once
	unsubscribe []func()
	logger      zerolog.Logger
	keepalive   time.Duration
}

// NewStreamService builds the websocket stream service.
func NewStreamService(interactions InteractionService, bus *eventbus.Bus, keepalive time.Duration, logger zerolog.Logger) StreamService {
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &streamService{
		interactions: interactions,
		bus:          bus,
		keepalive:    keepalive,
		logger:       logger.With().Str("component", "stream_service").Logger(),
	}
}

// ServeConnection sends a snapshot of the image's interactions followed by
// every reaction or comment added to it. Clients may see a record both in
// the snapshot and as a live message and should merge by id.
func (s *streamService) ServeConnection(conn *websocket.Conn, opts StreamOptions) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := s.logger.With().Str("image_id", opts.ImageID).Logger()
	if opts.CorrelationID != "" {
		logger = logger.With().Str("correlation_id", opts.CorrelationID).Logger()
	}

	client := &streamClient{
		conn:      conn,
		send:      make(chan dto.StreamMessage, streamSendBufferSize),
		closed:    make(chan struct{}),
		logger:    logger,
		keepalive: s.keepalive,
	}

	if s.bus != nil {
		forward := func(_ context.Context, evt eventbus.Event) error {
			if evt.ImageID() != opts.ImageID {
				return nil
			}
			client.enqueue(streamMessage(evt))
			return nil
		}
		client.unsubscribe = append(client.unsubscribe,
			s.bus.Subscribe(eventbus.KindReactionAdded, forward),
			s.bus.Subscribe(eventbus.KindCommentAdded, forward),
		)
	}

	session, err := s.interactions.Open(ctx, opts.ImageID)
	if err != nil {
		logger.Warn().Err(err).Msg("interaction snapshot unavailable")
	} else {
		snapshot := dto.NewInteractionsResponse(opts.ImageID, session.Reactions(), session.Comments())
		session.Close()
		client.enqueue(dto.StreamMessage{Type: streamTypeSnapshot, ImageID: opts.ImageID, Interactions: &snapshot})
	}

	observability.StreamConnections().Inc()
	defer observability.StreamConnections().Dec()

	go client.writer()
	client.reader()
}

func streamMessage(evt eventbus.Event) dto.StreamMessage {
	message := dto.StreamMessage{Type: string(evt.Kind()), ImageID: evt.ImageID()}
	switch e := evt.(type) {
	case eventbus.ReactionAdded:
		reaction := e.Reaction
		message.Reaction = &reaction
	case eventbus.CommentAdded:
		comment := e.Comment
		message.Comment = &comment
	}
	return message
}

func (c *streamClient) enqueue(message dto.StreamMessage) {
	select {
	case <-c.closed:
		return
	default:
	}

	select {
	case c.send <- message:
	default:
		c.logger.Warn().Str("type", message.Type).Msg("dropping stream message for slow client")
	}
}

// reader drains client frames until the connection closes.
func (c *streamClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.logger.Debug().Err(err).Msg("stream read loop ended")
			return
		}
	}
}

func (c *streamClient) writer() {
	defer c.close()

	ticker := time.NewTicker(c.keepalive)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug().Err(err).Msg("stream write loop terminated")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.logger.Debug().Err(err).Msg("stream ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *streamClient) close() {
	c.once.Do(func() {
		close(c.closed)
		for _, unsubscribe := range c.unsubscribe {
			unsubscribe()
		}
		_ = c.conn.Close()
	})
}
