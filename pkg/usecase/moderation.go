package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/flow"
	"github.com/modsec-lab/aegis/pkg/utils/errutil"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
)

// HandleChannelMessage processes one message posted to a public channel.
// Messages in the moderation channel drive the moderator dialogue; everything
// else goes through the automated content scan.
func (c *Coordinator) HandleChannelMessage(ctx context.Context, msg *model.SourceMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.ChannelID == c.modChannelID {
		return c.handleModMessage(ctx, strings.TrimSpace(msg.Text))
	}

	return c.scanMessage(ctx, msg)
}

func (c *Coordinator) handleModMessage(ctx context.Context, text string) error {
	if c.active != nil {
		return c.advanceModeration(ctx, text)
	}

	switch text {
	case flow.BeginKeyword:
		c.registry.BuildQueue(ctx)
	case flow.NextKeyword:
		if c.registry.QueueLen() == 0 {
			c.registry.BuildQueue(ctx)
		}
	default:
		// Channel chatter between reviews is not for us
		return nil
	}

	report := c.registry.PopNext()
	if report == nil {
		c.post(ctx, c.modChannelID, "There are no reports in the queue.")
		return nil
	}

	c.active = flow.NewModeratorFlow(model.NewModerationCase(report)).WithCategories(c.categories)
	return c.advanceModeration(ctx, text)
}

func (c *Coordinator) advanceModeration(ctx context.Context, text string) error {
	replies := c.active.Handle(ctx, text)
	c.post(ctx, c.modChannelID, replies...)

	if c.active.Aborted() {
		// The report goes back to the registry; the next queue build will
		// surface it again.
		if err := c.registry.Add(c.active.Case().Report); err != nil {
			errutil.Handle(ctx, err, "failed to requeue report after cancelled moderation")
		}
		c.active = nil
		return nil
	}

	if !c.active.Complete() {
		return nil
	}

	done := c.active
	c.active = nil
	return c.finishCase(ctx, done.Case())
}

func (c *Coordinator) finishCase(ctx context.Context, mc *model.ModerationCase) error {
	logger := logging.From(ctx)
	report := mc.Report

	logger.Info("moderation case complete",
		"report_id", report.ID,
		"category", mc.Category,
		"actions", mc.Actions.Sorted(),
		"auto", report.AutoGenerated,
	)

	if len(mc.Actions) > 0 && report.Target != nil {
		c.post(ctx, report.Target.ChannelID, mc.Outcome)
		c.dm(ctx, report.Target.AuthorID, "Your post was reviewed by our content moderation team. "+mc.Outcome)

		if err := c.recordStrike(ctx, mc); err != nil {
			errutil.Handle(ctx, err, "failed to update strike ledger")
		}
	}

	if !report.AutoGenerated && report.ReporterID != "" {
		c.dm(ctx, report.ReporterID, "Your report has been reviewed by our content moderation team. "+mc.Outcome)
	}

	if err := c.repo.CaseLog().Put(ctx, model.NewCaseLog(mc)); err != nil {
		errutil.Handle(ctx, err, "failed to archive case log")
	}

	if mc.Actioned() {
		threshold := c.registry.Adapt(report.Score)
		logger.Info("auto-flag threshold adapted", "threshold", threshold, "score", report.Score)
	}

	if n := c.registry.Len(); n > 0 {
		c.post(ctx, c.modChannelID, fmt.Sprintf("%d reports remain in the queue. Type `next` to review the next one.", n))
	} else {
		c.post(ctx, c.modChannelID, "The report queue is now empty.")
	}

	return nil
}

// recordStrike applies the strike-ledger consequences of an adjudicated case.
// Flagged or removed posts add one strike; a ban jumps the user straight to
// the ban tier. Tier warnings go to the user by DM; a ban reached by
// accumulation is also announced in the content and moderation channels.
func (c *Coordinator) recordStrike(ctx context.Context, mc *model.ModerationCase) error {
	if !mc.Actioned() {
		return nil
	}

	userID := mc.Report.Target.AuthorID
	strikes := c.repo.Strike()

	rec, err := strikes.Get(ctx, userID)
	found := err == nil
	if err != nil {
		if !errors.Is(err, interfaces.ErrStrikeNotFound) {
			return err
		}
		rec = &model.StrikeRecord{UserID: userID}
	}
	wasBanned := rec.Banned()

	if mc.Banned() {
		if rec.Count < model.BanStrikeCount {
			rec.Count = model.BanStrikeCount
		}
	} else {
		rec.Count++
	}

	if found {
		err = strikes.Update(ctx, rec)
	} else {
		err = strikes.Insert(ctx, rec)
	}
	if err != nil {
		return err
	}

	switch {
	case rec.Banned():
		if !wasBanned && !mc.Banned() {
			// The ban tier was reached by strike accumulation, so the
			// outcome narration did not mention it. Announce it ourselves.
			c.post(ctx, mc.Report.Target.ChannelID, "The author of this post has been banned from our platform.")
			c.post(ctx, c.modChannelID, fmt.Sprintf("%s has reached %d strikes and has been banned.", mc.Report.Target.AuthorName, model.BanStrikeCount))
		}
		c.dm(ctx, userID, "You have been banned from our platform.")
	case rec.Count == model.BanStrikeCount-1:
		c.dm(ctx, userID, fmt.Sprintf("This is strike %d of %d against your account. One more violation and you will be banned from our platform.", rec.Count, model.BanStrikeCount))
	default:
		c.dm(ctx, userID, fmt.Sprintf("This is strike %d of %d against your account. At %d strikes you will be banned from our platform.", rec.Count, model.BanStrikeCount, model.BanStrikeCount))
	}

	return nil
}
