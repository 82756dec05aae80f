package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/modsec-lab/aegis/pkg/flow"
	"github.com/modsec-lab/aegis/pkg/utils/errutil"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
)

// HandleDirectMessage processes one DM from a user. It drives the user's
// in-flight reporter dialogue if one exists, or starts one on the report
// keyword.
func (c *Coordinator) HandleDirectMessage(ctx context.Context, userID types.UserID, userName string, channelID types.ChannelID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	text = strings.TrimSpace(text)

	if f, ok := c.composing[userID]; ok {
		return c.advanceReport(ctx, f, channelID, text)
	}

	switch text {
	case flow.HelpKeyword:
		c.post(ctx, channelID, flow.HelpText)
		return nil

	case flow.StartKeyword:
		report := model.NewReport(userID, userName, channelID)
		f := flow.NewReportFlow(report, c.chat).WithCategories(c.categories)
		c.composing[userID] = f
		return c.advanceReport(ctx, f, channelID, text)
	}

	c.post(ctx, channelID, flow.HelpText)
	return nil
}

func (c *Coordinator) advanceReport(ctx context.Context, f *flow.ReportFlow, channelID types.ChannelID, text string) error {
	replies := f.Handle(ctx, text)
	c.post(ctx, channelID, replies...)

	if !f.Complete() {
		return nil
	}

	report := f.Report()
	delete(c.composing, report.ReporterID)

	if report.Cancelled() {
		return nil
	}

	logging.From(ctx).Info("report filed",
		"report_id", report.ID,
		"reporter_id", report.ReporterID,
		"category", report.Category,
		"priority", report.Priority,
	)

	if err := c.registry.Add(report); err != nil {
		errutil.Handle(ctx, err, "failed to register report")
		return err
	}

	c.post(ctx, c.modChannelID, fmt.Sprintf(
		"%s has filed a report. There are now %d reports waiting. Type `start` or `next` in this channel to review the queue.",
		report.ReporterName, c.registry.Len()))

	return nil
}
