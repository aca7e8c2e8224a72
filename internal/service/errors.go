package service

import "errors"

var (
	// ErrStorageUnavailable reports that the durable store rejected a read or write.
	ErrStorageUnavailable = errors.New("local storage unavailable")
	// ErrBroadcastFailed reports that an event could not be relayed to sibling contexts.
	ErrBroadcastFailed = errors.New("event broadcast failed")
	// ErrRemoteBackend reports a failed query or transaction against the remote backend.
	ErrRemoteBackend = errors.New("remote backend failure")
	// ErrEmojiRequired rejects reactions without an emoji.
	ErrEmojiRequired = errors.New("emoji is required")
	// ErrInvalidPreference rejects unknown themes, moods or view modes.
	ErrInvalidPreference = errors.New("invalid preference")
)
