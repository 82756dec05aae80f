package flow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
)

// MessageLookup resolves a message link triple to the referenced message
type MessageLookup interface {
	LookupMessage(ctx context.Context, teamDomain string, channelID types.ChannelID, ts types.MessageTS) (*model.SourceMessage, error)
}

// linkPattern matches a Slack archive permalink and captures the workspace
// domain, channel ID and the raw message timestamp digits.
var linkPattern = regexp.MustCompile(`https?://([a-z0-9-]+)\.slack\.com/archives/([A-Z0-9]+)/p(\d{16})`)

// ParseMessageLink extracts (team domain, channel, timestamp) from a permalink.
// Returns ok=false when the text does not contain a recognizable link.
func ParseMessageLink(text string) (teamDomain string, channelID types.ChannelID, ts types.MessageTS, ok bool) {
	m := linkPattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", "", false
	}
	// p1234567890123456 encodes timestamp 1234567890.123456
	raw := m[3]
	return m[1], types.ChannelID(m[2]), types.MessageTS(raw[:10] + "." + raw[10:]), true
}

// ReportFlow drives the reporter-facing dialogue and fills in a Report.
// Handle processes one inbound message and returns the ordered replies to
// send back to the reporter. Invalid input re-prompts without a state change.
type ReportFlow struct {
	report     *model.Report
	lookup     MessageLookup
	categories []CategoryOption
}

// NewReportFlow starts a reporter dialogue for the given report.
// A report that already carries a target message skips the link stage and
// begins at the reason question.
func NewReportFlow(report *model.Report, lookup MessageLookup) *ReportFlow {
	if report.Target != nil && report.Status == types.ReportStart {
		report.Status = types.ReportAwaitingReason
	}
	return &ReportFlow{
		report:     report,
		lookup:     lookup,
		categories: DefaultCategories(),
	}
}

// WithCategories overrides the category option table
func (f *ReportFlow) WithCategories(options []CategoryOption) *ReportFlow {
	f.categories = options
	return f
}

// Report returns the report under composition
func (f *ReportFlow) Report() *model.Report {
	return f.report
}

// Complete reports whether the dialogue has ended
func (f *ReportFlow) Complete() bool {
	return f.report.Complete()
}

// Handle advances the dialogue with one inbound message
func (f *ReportFlow) Handle(ctx context.Context, text string) []string {
	text = strings.TrimSpace(text)

	if text == CancelKeyword && !f.report.Status.IsTerminal() {
		f.report.Status = types.ReportCancelled
		return []string{"Report cancelled."}
	}

	switch f.report.Status {
	case types.ReportStart:
		f.report.Status = types.ReportAwaitingMessage
		return []string{
			"Thank you for starting the reporting process. " +
				"Say `help` at any time for more information.\n\n" +
				"Please copy paste the link to the post you want to report.\n" +
				"You can obtain this link by opening the message menu and clicking `Copy link`.",
		}

	case types.ReportAwaitingMessage:
		return f.handleMessageLink(ctx, text)

	case types.ReportAwaitingReason:
		if opt, ok := categoryByKey(f.categories, text); ok {
			f.report.Category = opt.Category
			f.report.Priority += opt.Weight
		} else {
			f.report.Category = types.Category(text)
			f.report.Priority++
		}
		f.report.Status = types.ReportAwaitingImmediacy
		return []string{"Do the contents of this post pose an ongoing or immediate threat? Type 'Y' for yes and 'N' for no."}

	case types.ReportAwaitingImmediacy:
		if text == YesKeyword {
			f.report.Immediate = true
			f.report.Priority += 2
			f.report.Status = types.ReportAwaitingLivestream
			return []string{"You stated that the contents of this post pose an ongoing or immediate threat. Is this post being livestreamed? Type 'Y' for yes and 'N' for no."}
		}
		f.report.Priority++
		f.report.Status = types.ReportAwaitingDetails
		return []string{detailsPrompt}

	case types.ReportAwaitingLivestream:
		if text == YesKeyword {
			f.report.Livestream = true
			f.report.Priority += 2
		} else {
			f.report.Livestream = false
			f.report.Priority++
		}
		f.report.Status = types.ReportAwaitingDetails
		return []string{detailsPrompt}

	case types.ReportAwaitingDetails:
		if text != NoKeyword {
			f.report.Details = text
		}
		f.report.Status = types.ReportAwaitingModeration
		if f.report.Livestream {
			return []string{"Thank you. Our content moderation team will review this post with high priority. The post may be removed or flagged and/or the user may be banned."}
		}
		return []string{"Thank you. Our content moderation team will review this post. The post may be removed or flagged and/or the user may be banned."}
	}

	return []string{"Not a valid option, please choose again from the prompt or type 'cancel' to cancel the report."}
}

const detailsPrompt = "If you would like to provide any additional details, please do so now. Otherwise type 'N'."

func (f *ReportFlow) handleMessageLink(ctx context.Context, text string) []string {
	teamDomain, channelID, ts, ok := ParseMessageLink(text)
	if !ok {
		return []string{"I'm sorry, I couldn't read that link. Please try again or say `cancel` to cancel."}
	}

	msg, err := f.lookup.LookupMessage(ctx, teamDomain, channelID, ts)
	switch {
	case errors.Is(err, interfaces.ErrUnknownWorkspace):
		return []string{"I cannot accept reports of posts from workspaces that I'm not in. Please have the workspace owner add me and try again."}
	case errors.Is(err, interfaces.ErrUnknownChannel):
		return []string{"It seems this channel was deleted or never existed. Please try again or type `cancel` to cancel."}
	case errors.Is(err, interfaces.ErrMessageNotFound):
		return []string{"It seems this post was deleted or never existed. Please try again or type `cancel` to cancel."}
	case err != nil:
		return []string{"Something went wrong while looking up that post. Please try again or type `cancel` to cancel."}
	}

	f.report.Target = msg
	f.report.Status = types.ReportAwaitingReason
	return []string{
		"I found this post:",
		quote(msg.AuthorName, msg.Text),
		reasonPrompt(f.categories),
	}
}

func reasonPrompt(options []CategoryOption) string {
	var b strings.Builder
	b.WriteString("What is your reason for reporting this post? \n")
	for _, opt := range options {
		fmt.Fprintf(&b, "%s: %s\n", opt.Key, titleCase(opt.Category.String()))
	}
	b.WriteString("If your reason for reporting this post does not fall into any of the specified categories above, please share in a few words your reason for reporting this post.")
	return b.String()
}

func quote(author, text string) string {
	return "```" + author + ": " + text + "```"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
