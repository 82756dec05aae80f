package model

import (
	"time"

	"github.com/modsec-lab/aegis/pkg/domain/types"
)

// CaseLog is the archived record of a completed moderation case
type CaseLog struct {
	ID            string
	ReportID      types.ReportID
	ReporterID    types.UserID
	TargetUserID  types.UserID
	ChannelID     types.ChannelID
	Text          string
	Category      types.Category
	Actions       []types.Action
	Outcome       string
	AutoGenerated bool
	Priority      int
	Score         float64
	CreatedAt     time.Time
}

// NewCaseLog builds the archive entry for a completed case
func NewCaseLog(c *ModerationCase) *CaseLog {
	log := &CaseLog{
		ID:            c.Report.ID.String(),
		ReportID:      c.Report.ID,
		ReporterID:    c.Report.ReporterID,
		Category:      c.Category,
		Actions:       c.Actions.Sorted(),
		Outcome:       c.Outcome,
		AutoGenerated: c.Report.AutoGenerated,
		Priority:      c.Report.Priority,
		Score:         c.Report.Score,
		CreatedAt:     time.Now().UTC(),
	}
	if c.Report.Target != nil {
		log.TargetUserID = c.Report.Target.AuthorID
		log.ChannelID = c.Report.Target.ChannelID
		log.Text = c.Report.Target.Text
	}
	return log
}
