package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/modsec-lab/aegis/pkg/utils/errutil"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
)

// Automatic reports carry a fixed answer priority: a banned-organization
// match outranks a plain threshold exceedance.
const (
	orgMatchPriority  = 3
	thresholdPriority = 2
)

// scanMessage runs the automated content scan over one channel message and
// synthesizes a report when the scaled composite exceeds the adaptive
// threshold or the normalized text names a banned organization. Scoring
// failures are recoverable: the message simply goes unscanned.
func (c *Coordinator) scanMessage(ctx context.Context, msg *model.SourceMessage) error {
	normalized, score, err := c.registry.ScoreText(ctx, msg.Text)
	if err != nil {
		errutil.Handle(ctx, err, "failed to scan message")
		return nil
	}

	org := c.matchBannedOrg(normalized)
	exceeded := score/100 > c.registry.Threshold()
	if org == "" && !exceeded {
		return nil
	}

	priority := thresholdPriority
	var category types.Category
	if org != "" {
		priority = orgMatchPriority
		category = types.CategoryTerrorism
	}

	report := model.NewAutoReport(msg, category, priority, score)
	if err := c.registry.Add(report); err != nil {
		errutil.Handle(ctx, err, "failed to register automatic report")
		return nil
	}

	logging.From(ctx).Info("message flagged automatically",
		"report_id", report.ID,
		"channel_id", msg.ChannelID,
		"score", score,
		"threshold", c.registry.Threshold(),
		"org_match", org,
	)

	c.post(ctx, c.modChannelID, fmt.Sprintf(
		"A post in <#%s> was flagged automatically (score %.1f). There are now %d reports waiting. Type `start` or `next` in this channel to review the queue.",
		msg.ChannelID, score, c.registry.Len()))

	return nil
}

func (c *Coordinator) matchBannedOrg(normalized string) string {
	lowered := strings.ToLower(normalized)
	for _, org := range c.bannedOrgs {
		if strings.Contains(lowered, org) {
			return org
		}
	}
	return ""
}
