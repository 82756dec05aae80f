package types

import "fmt"

// ModerationStatus represents the state of the moderator-facing dialogue
type ModerationStatus string

const (
	ModerationStart              ModerationStatus = "START"
	ModerationAwaitingCategory   ModerationStatus = "AWAITING_CATEGORY"
	ModerationAwaitingImmediacy  ModerationStatus = "AWAITING_IMMEDIACY"
	ModerationAwaitingLivestream ModerationStatus = "AWAITING_LIVESTREAM"
	ModerationAwaitingSource     ModerationStatus = "AWAITING_SOURCE"
	ModerationAwaitingAid        ModerationStatus = "AWAITING_AID"
	ModerationAwaitingDecision   ModerationStatus = "AWAITING_DECISION"
	ModerationComplete           ModerationStatus = "COMPLETE"
)

// AllModerationStatuses returns all valid moderation statuses
func AllModerationStatuses() []ModerationStatus {
	return []ModerationStatus{
		ModerationStart,
		ModerationAwaitingCategory,
		ModerationAwaitingImmediacy,
		ModerationAwaitingLivestream,
		ModerationAwaitingSource,
		ModerationAwaitingAid,
		ModerationAwaitingDecision,
		ModerationComplete,
	}
}

// IsValid checks if the moderation status is valid
func (s ModerationStatus) IsValid() bool {
	switch s {
	case ModerationStart,
		ModerationAwaitingCategory,
		ModerationAwaitingImmediacy,
		ModerationAwaitingLivestream,
		ModerationAwaitingSource,
		ModerationAwaitingAid,
		ModerationAwaitingDecision,
		ModerationComplete:
		return true
	default:
		return false
	}
}

// String returns the string representation of the moderation status
func (s ModerationStatus) String() string {
	return string(s)
}

// ParseModerationStatus parses a string into a ModerationStatus
func ParseModerationStatus(s string) (ModerationStatus, error) {
	status := ModerationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid moderation status: %s", s)
	}
	return status, nil
}
