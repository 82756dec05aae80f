package model

import "github.com/modsec-lab/aegis/pkg/domain/types"

// SourceMessage identifies a piece of flagged content on the chat platform
type SourceMessage struct {
	TeamID     types.TeamID
	TeamDomain string
	ChannelID  types.ChannelID
	Timestamp  types.MessageTS
	AuthorID   types.UserID
	AuthorName string
	Text       string
}
