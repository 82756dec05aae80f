package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
)

// ModeratorFlow drives the moderator-facing dialogue against one report.
// The typed action selection is authoritative; the recommendation shown at
// the decision stage is advisory only.
type ModeratorFlow struct {
	c          *model.ModerationCase
	categories []CategoryOption
	aborted    bool
}

// NewModeratorFlow binds a moderator dialogue to a case
func NewModeratorFlow(c *model.ModerationCase) *ModeratorFlow {
	return &ModeratorFlow{
		c:          c,
		categories: DefaultCategories(),
	}
}

// WithCategories overrides the category option table
func (f *ModeratorFlow) WithCategories(options []CategoryOption) *ModeratorFlow {
	f.categories = options
	return f
}

// Case returns the case under adjudication
func (f *ModeratorFlow) Case() *model.ModerationCase {
	return f.c
}

// Complete reports whether the dialogue reached an outcome
func (f *ModeratorFlow) Complete() bool {
	return f.c.Complete()
}

// Aborted reports whether the moderator cancelled without an outcome
func (f *ModeratorFlow) Aborted() bool {
	return f.aborted
}

// Handle advances the dialogue with one inbound message
func (f *ModeratorFlow) Handle(ctx context.Context, text string) []string {
	text = strings.TrimSpace(text)

	if text == CancelKeyword && !f.c.Complete() {
		f.aborted = true
		return []string{"Moderation of this report has been cancelled. Type 'next' to pick it up again later."}
	}

	switch f.c.Status {
	case types.ModerationStart:
		f.c.Status = types.ModerationAwaitingCategory
		return f.startPrompt()

	case types.ModerationAwaitingCategory:
		return f.handleCategory(text)

	case types.ModerationAwaitingImmediacy:
		if text == YesKeyword {
			f.c.Immediate = true
			f.c.Status = types.ModerationAwaitingLivestream
			return []string{"Is this post being livestreamed? Type 'Y' for yes and 'N' for no."}
		}
		f.c.Immediate = false
		f.c.Status = types.ModerationAwaitingDecision
		return f.decisionPrompt()

	case types.ModerationAwaitingLivestream:
		if text == YesKeyword {
			f.c.Livestream = true
			f.c.Status = types.ModerationAwaitingSource
			return []string{"Who is livestreaming this event? If it is the perpetrator, type 'P'. If it is a victim, type 'V'."}
		}
		f.c.Livestream = false
		f.c.Status = types.ModerationAwaitingDecision
		return f.decisionPrompt()

	case types.ModerationAwaitingSource:
		switch text {
		case PerpetratorKeyword:
			f.c.FromVictim = false
			f.c.Status = types.ModerationAwaitingDecision
			return f.decisionPrompt()
		case VictimKeyword:
			f.c.FromVictim = true
			f.c.Status = types.ModerationAwaitingAid
			return []string{"Can this livestream enable the victim to acquire help? Please confirm by typing 'Y'. Type 'N' if not."}
		}
		return []string{"Not a valid option. Type 'P' for perpetrator or 'V' for victim, or 'cancel' to cancel."}

	case types.ModerationAwaitingAid:
		f.c.LivestreamHelpsVictim = text == YesKeyword
		f.c.Status = types.ModerationAwaitingDecision
		return f.decisionPrompt()

	case types.ModerationAwaitingDecision:
		actions, err := types.ParseActionSet(text)
		if err != nil {
			return []string{"I couldn't read that selection. Please type a comma-separated list of action numbers, e.g. '2,3'."}
		}
		f.c.Actions = actions
		f.c.Outcome = RenderOutcome(actions)
		f.c.Status = types.ModerationComplete
		return []string{"Thank you. The moderation process for this report is now complete."}
	}

	return nil
}

func (f *ModeratorFlow) startPrompt() []string {
	r := f.c.Report
	out := []string{"There is a report for the following message:"}
	if r.Target != nil {
		out = append(out, quote(r.Target.AuthorName, r.Target.Text))
	}

	if r.AutoGenerated {
		out = append(out,
			"This report was generated automatically by the content scanner.",
			f.categoryPrompt(""))
		return out
	}

	live := "is not"
	if r.Livestream {
		live = "is"
	}
	immediate := "no"
	if r.Immediate {
		immediate = "an"
	}
	meta := fmt.Sprintf("The post was reported for %s, %s reported to be a livestream, and poses %s immediate threat according to the reporter.",
		r.Category, live, immediate)
	if r.Details != "" {
		meta += fmt.Sprintf(" Additional details from the reporter: %s", r.Details)
	}
	out = append(out, meta, f.categoryPrompt(r.Category.String()))
	return out
}

func (f *ModeratorFlow) categoryPrompt(claimed string) string {
	var b strings.Builder
	b.WriteString("What harm category does this post fall under?\n")
	if claimed != "" {
		fmt.Fprintf(&b, "Y: Confirm the reporter's category (%s)\n", claimed)
	}
	for _, opt := range f.categories {
		fmt.Fprintf(&b, "%s: %s\n", opt.Key, titleCase(opt.Category.String()))
	}
	fmt.Fprintf(&b, "%s: Not harmful, close without action", NotHarmfulKeyword)
	return b.String()
}

func (f *ModeratorFlow) handleCategory(text string) []string {
	switch {
	case text == NotHarmfulKeyword:
		f.c.Outcome = "The post was found not to be harmful and no action was taken."
		f.c.Status = types.ModerationComplete
		return []string{"Thank you for reviewing this post. No action will be taken and the moderation process for this report is now complete."}

	case text == ConfirmKeyword && !f.c.Report.AutoGenerated:
		f.c.Category = f.c.Report.Category

	default:
		opt, ok := categoryByKey(f.categories, text)
		if !ok {
			return []string{"Not a valid option. Please choose a category from the prompt, or type 'cancel' to cancel."}
		}
		f.c.Category = opt.Category
	}

	f.c.Status = types.ModerationAwaitingImmediacy
	return []string{"Do the contents of this post pose an ongoing or immediate threat? Type 'Y' for yes and 'N' for no."}
}

func (f *ModeratorFlow) decisionPrompt() []string {
	rec := Recommend(f.c)

	var b strings.Builder
	b.WriteString("Which actions should be taken? Type a comma-separated list of numbers.\n")
	b.WriteString("1: Store the incident against the user\n")
	b.WriteString("2: Flag the post\n")
	b.WriteString("3: Remove the post\n")
	b.WriteString("4: Ban the user\n")
	b.WriteString("5: Store the post for legal proceedings\n")

	codes := make([]string, 0, len(rec))
	for _, a := range rec.Sorted() {
		codes = append(codes, fmt.Sprintf("%d", int(a)))
	}
	fmt.Fprintf(&b, "Recommended: %s", strings.Join(codes, ","))

	return []string{b.String()}
}

// Recommend computes the advisory action set for a case.
// A confirmed harm category always recommends recording the incident. A
// livestream authored by a victim who is being helped is only flagged; other
// livestreams are removed, with a ban when not victim-authored. Harmful
// content that is not a livestream is flagged.
func Recommend(c *model.ModerationCase) types.ActionSet {
	rec := types.NewActionSet(types.ActionRecord)

	switch {
	case c.Livestream && c.FromVictim && c.LivestreamHelpsVictim:
		rec[types.ActionFlag] = true
	case c.Livestream:
		rec[types.ActionDelete] = true
		if !c.FromVictim {
			rec[types.ActionBan] = true
		}
	default:
		rec[types.ActionFlag] = true
	}

	return rec
}

// RenderOutcome produces the human-readable outcome summary, iterating the
// selected actions in fixed numeric order. The flag clause is narrated only
// when the post is not also removed; removal supersedes the flag narration
// even though both selections remain recorded.
func RenderOutcome(actions types.ActionSet) string {
	var clauses []string
	for _, a := range types.AllActions() {
		if !actions.Has(a) {
			continue
		}
		switch a {
		case types.ActionRecord:
			clauses = append(clauses, "The incident has been recorded against the user's account.")
		case types.ActionFlag:
			if !actions.Has(types.ActionDelete) {
				clauses = append(clauses, "The post has been flagged with a warning but remains visible.")
			}
		case types.ActionDelete:
			clauses = append(clauses, "The post has been removed.")
		case types.ActionBan:
			clauses = append(clauses, "The user has been banned from our platform.")
		case types.ActionLegalHold:
			clauses = append(clauses, "The post has been stored to assist in future legal proceedings and authorities have been notified.")
		}
	}
	return strings.Join(clauses, " ")
}
