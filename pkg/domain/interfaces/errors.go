package interfaces

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across repository and service implementations
var (
	ErrStrikeNotFound = goerr.New("strike record not found")

	// Message link resolution failures; each maps to a distinct reply
	// in the reporter dialogue.
	ErrUnknownWorkspace = goerr.New("workspace is not covered by the bot")
	ErrUnknownChannel   = goerr.New("channel not found")
	ErrMessageNotFound  = goerr.New("message not found")
)
