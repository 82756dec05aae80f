package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID represents a chat platform user identifier
type UserID string

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// Validate checks if the UserID is valid
func (u UserID) Validate() error {
	if u == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// ChannelID represents a chat platform channel identifier
type ChannelID string

// String returns the string representation of ChannelID
func (c ChannelID) String() string {
	return string(c)
}

// TeamID represents a chat workspace identifier
type TeamID string

// String returns the string representation of TeamID
func (t TeamID) String() string {
	return string(t)
}

// MessageTS represents a message timestamp, the per-channel message identifier
type MessageTS string

// String returns the string representation of MessageTS
func (m MessageTS) String() string {
	return string(m)
}

// ReportID represents a unique identifier for a report
type ReportID string

// NewReportID generates a new random ReportID
func NewReportID() ReportID {
	return ReportID(uuid.NewString())
}

// String returns the string representation of ReportID
func (r ReportID) String() string {
	return string(r)
}
