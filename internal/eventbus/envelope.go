package eventbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

// ErrMalformedEnvelope marks relayed payloads that fail to parse or validate.
var ErrMalformedEnvelope = errors.New("malformed event envelope")

const envelopeSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["source", "kind", "image_id", "sent_at"],
  "properties": {
    "source": {"type": "string", "minLength": 1},
    "kind": {"enum": ["reaction-added", "comment-added"]},
    "image_id": {"type": "string", "minLength": 1},
    "sent_at": {"type": "integer"},
    "reaction": {"$ref": "#/definitions/reaction"},
    "comment": {"$ref": "#/definitions/comment"}
  },
  "allOf": [
    {"if": {"properties": {"kind": {"const": "reaction-added"}}}, "then": {"required": ["reaction"]}},
    {"if": {"properties": {"kind": {"const": "comment-added"}}}, "then": {"required": ["comment"]}}
  ],
  "definitions": {
    "reaction": {
      "type": "object",
      "required": ["id", "imageId", "emoji", "userId", "timestamp"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "imageId": {"type": "string", "minLength": 1},
        "emoji": {"type": "string", "minLength": 1},
        "userId": {"type": "string"},
        "timestamp": {"type": "integer"}
      }
    },
    "comment": {
      "type": "object",
      "required": ["id", "imageId", "text", "userId", "timestamp"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "imageId": {"type": "string", "minLength": 1},
        "text": {"type": "string", "minLength": 1},
        "userId": {"type": "string"},
        "timestamp": {"type": "integer"}
      }
    }
  }
}`

var envelopeSchema = jsonschema.MustCompileString("envelope.json", envelopeSchemaJSON)

// Envelope is the wire form of an event relayed between contexts.
type Envelope struct {
	Source   string           `json:"source"`
	Kind     Kind             `json:"kind"`
	ImageID  string           `json:"image_id"`
	Reaction *models.Reaction `json:"reaction,omitempty"`
	Comment  *models.Comment  `json:"comment,omitempty"`
	SentAt   int64            `json:"sent_at"`
}

// NewEnvelope wraps an event for relaying.
func NewEnvelope(source string, evt Event, sentAt time.Time) Envelope {
	env := Envelope{
		Source:  source,
		Kind:    evt.Kind(),
		ImageID: evt.ImageID(),
		SentAt:  sentAt.UnixMilli(),
	}
	switch e := evt.(type) {
	case ReactionAdded:
		reaction := e.Reaction
		env.Reaction = &reaction
	case CommentAdded:
		comment := e.Comment
		env.Comment = &comment
	}
	return env
}

// Event unwraps the envelope.
func (e Envelope) Event() (Event, error) {
	switch e.Kind {
	case KindReactionAdded:
		if e.Reaction == nil || e.Reaction.ImageID != e.ImageID {
			return nil, fmt.Errorf("%w: reaction does not match envelope", ErrMalformedEnvelope)
		}
		return ReactionAdded{Reaction: *e.Reaction}, nil
	case KindCommentAdded:
		if e.Comment == nil || e.Comment.ImageID != e.ImageID {
			return nil, fmt.Errorf("%w: comment does not match envelope", ErrMalformedEnvelope)
		}
		return CommentAdded{Comment: *e.Comment}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedEnvelope, e.Kind)
	}
}

// EncodeEnvelope serialises an envelope.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeEnvelope validates raw against the envelope schema and decodes it.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if err := envelopeSchema.Validate(doc); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return env, nil
}
