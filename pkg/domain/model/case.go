package model

import (
	"time"

	"github.com/modsec-lab/aegis/pkg/domain/types"
)

// ModerationCase is the active adjudication of exactly one report
type ModerationCase struct {
	Report *Report

	Category              types.Category
	Immediate             bool
	Livestream            bool
	FromVictim            bool
	LivestreamHelpsVictim bool

	Actions types.ActionSet
	Outcome string

	Status    types.ModerationStatus
	CreatedAt time.Time
}

// NewModerationCase binds a case to a report
func NewModerationCase(report *Report) *ModerationCase {
	return &ModerationCase{
		Report:    report,
		Actions:   types.NewActionSet(),
		Status:    types.ModerationStart,
		CreatedAt: time.Now().UTC(),
	}
}

// Complete reports whether the moderation dialogue has ended
func (c *ModerationCase) Complete() bool {
	return c.Status == types.ModerationComplete
}

// Flagged reports whether the flag action was selected
func (c *ModerationCase) Flagged() bool {
	return c.Actions.Has(types.ActionFlag)
}

// Removed reports whether the delete action was selected
func (c *ModerationCase) Removed() bool {
	return c.Actions.Has(types.ActionDelete)
}

// Banned reports whether the ban action was selected
func (c *ModerationCase) Banned() bool {
	return c.Actions.Has(types.ActionBan)
}

// Actioned reports whether any of flag, delete or ban was selected.
// Threshold adaptation only follows cases that resulted in one of these.
func (c *ModerationCase) Actioned() bool {
	return c.Flagged() || c.Removed() || c.Banned()
}
