package types

import "fmt"

// ReportStatus represents the state of the reporter-facing dialogue
type ReportStatus string

const (
	ReportStart              ReportStatus = "START"
	ReportAwaitingMessage    ReportStatus = "AWAITING_MESSAGE"
	ReportAwaitingReason     ReportStatus = "AWAITING_REASON"
	ReportAwaitingImmediacy  ReportStatus = "AWAITING_IMMEDIACY"
	ReportAwaitingLivestream ReportStatus = "AWAITING_LIVESTREAM"
	ReportAwaitingDetails    ReportStatus = "AWAITING_DETAILS"
	ReportAwaitingModeration ReportStatus = "AWAITING_MODERATION"
	ReportCancelled          ReportStatus = "CANCELLED"
)

// AllReportStatuses returns all valid report statuses
func AllReportStatuses() []ReportStatus {
	return []ReportStatus{
		ReportStart,
		ReportAwaitingMessage,
		ReportAwaitingReason,
		ReportAwaitingImmediacy,
		ReportAwaitingLivestream,
		ReportAwaitingDetails,
		ReportAwaitingModeration,
		ReportCancelled,
	}
}

// IsValid checks if the report status is valid
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStart,
		ReportAwaitingMessage,
		ReportAwaitingReason,
		ReportAwaitingImmediacy,
		ReportAwaitingLivestream,
		ReportAwaitingDetails,
		ReportAwaitingModeration,
		ReportCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the reporter-side dialogue has ended.
// AWAITING_MODERATION is terminal for the reporter but the report stays queued.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportAwaitingModeration || s == ReportCancelled
}

// String returns the string representation of the report status
func (s ReportStatus) String() string {
	return string(s)
}

// ParseReportStatus parses a string into a ReportStatus
func ParseReportStatus(s string) (ReportStatus, error) {
	status := ReportStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid report status: %s", s)
	}
	return status, nil
}
