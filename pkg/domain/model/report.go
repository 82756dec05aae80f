package model

import (
	"time"

	"github.com/modsec-lab/aegis/pkg/domain/types"
)

// Report is a structured record of a flagged post awaiting human review
type Report struct {
	ID                types.ReportID
	ReporterID        types.UserID
	ReporterName      string
	ReporterChannelID types.ChannelID // DM channel of the reporter

	Target *SourceMessage

	Category   types.Category
	Immediate  bool
	Livestream bool
	Details    string

	// Priority is derived from the reporter's answers (category weight,
	// immediacy, livestream). Score is the scaled oracle urgency, 100x the
	// composite, set at auto-flag time and refreshed on queue build.
	Priority int
	Score    float64

	AutoGenerated bool
	Status        types.ReportStatus
	CreatedAt     time.Time
}

// NewReport creates a report at the start of the reporter dialogue
func NewReport(reporterID types.UserID, reporterName string, dmChannel types.ChannelID) *Report {
	return &Report{
		ID:                types.NewReportID(),
		ReporterID:        reporterID,
		ReporterName:      reporterName,
		ReporterChannelID: dmChannel,
		Status:            types.ReportStart,
		CreatedAt:         time.Now().UTC(),
	}
}

// NewAutoReport creates a report synthesized by the automated scorer.
// It skips the message-link stage since the target is already known, and is
// queued for moderation immediately.
func NewAutoReport(target *SourceMessage, category types.Category, priority int, score float64) *Report {
	return &Report{
		ID:            types.NewReportID(),
		Target:        target,
		Category:      category,
		Priority:      priority,
		Score:         score,
		AutoGenerated: true,
		Status:        types.ReportAwaitingModeration,
		CreatedAt:     time.Now().UTC(),
	}
}

// Queued reports whether the report is awaiting moderation
func (r *Report) Queued() bool {
	return r.Status == types.ReportAwaitingModeration
}

// Complete reports whether the reporter-side dialogue has ended
func (r *Report) Complete() bool {
	return r.Status.IsTerminal()
}

// Cancelled reports whether the reporter aborted the dialogue
func (r *Report) Cancelled() bool {
	return r.Status == types.ReportCancelled
}
