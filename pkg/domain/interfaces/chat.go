package interfaces

import (
	"context"

	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
)

// ChatService defines the interface to the chat platform transport
type ChatService interface {
	// PostMessage sends text to a channel
	PostMessage(ctx context.Context, channelID types.ChannelID, text string) error

	// PostDirectMessage opens (or reuses) a DM conversation with the user
	// and sends text to it
	PostDirectMessage(ctx context.Context, userID types.UserID, text string) error

	// LookupMessage resolves a (team domain, channel, timestamp) triple to the
	// referenced message. Returns ErrUnknownWorkspace, ErrUnknownChannel or
	// ErrMessageNotFound for the respective resolution failures.
	LookupMessage(ctx context.Context, teamDomain string, channelID types.ChannelID, ts types.MessageTS) (*model.SourceMessage, error)
}

// ScoreClient defines the interface to the external toxicity scoring service
type ScoreClient interface {
	// Analyze returns attribute scores in [0,1] for the given text
	Analyze(ctx context.Context, text string) (model.Scores, error)
}

// Normalizer defines the interface to the text normalization service
type Normalizer interface {
	// Normalize returns the canonical English form of the text
	Normalize(ctx context.Context, text string) (string, error)
}
