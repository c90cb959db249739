package executor

import "errors"

var (
	// Config validation errors
	ErrProviderRequired  = errors.New("provider is required")
	ErrStoreRequired     = errors.New("conversation store is required")
	ErrToolboxRequired   = errors.New("toolbox builder is required")
	ErrContextRequired   = errors.New("context renderer is required")
	ErrFastModelRequired = errors.New("fast model is required")

	// Request validation errors
	ErrConversationIDRequired = errors.New("conversation id is required")
	ErrBabyIDRequired         = errors.New("baby id is required")
	ErrMessageRequired        = errors.New("message is required")

	// Sink errors
	ErrSinkClosed = errors.New("event sink is closed")
)
