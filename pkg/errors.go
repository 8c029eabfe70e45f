package loadstate

import "errors"

var (
	ErrOperationNotFound       = errors.New("operation not found")
	ErrFailedToMarshal         = errors.New("failed to marshal status record")
	ErrFailedToUnmarshal       = errors.New("failed to unmarshal status record")
	ErrFailedToSaveStatus      = errors.New("failed to save status record to Redis")
	ErrFailedToRetrieveKeys    = errors.New("failed to retrieve status keys")
	ErrFailedToRetrieveUpdates = errors.New("failed to retrieve recent updates")
	ErrFailedToPublishUpdate   = errors.New("failed to publish status update")
	ErrMissingOperationName    = errors.New("missing operation name")
	ErrInvalidLoadingFlag      = errors.New("invalid loading flag")
	ErrWebSocketUpgradeFailed  = errors.New("WebSocket upgrade failed")
	ErrFailedToWriteJSON       = errors.New("failed to write JSON to WebSocket")
)
