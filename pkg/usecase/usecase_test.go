package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/modsec-lab/aegis/pkg/registry"
	"github.com/modsec-lab/aegis/pkg/repository/memory"
	"github.com/modsec-lab/aegis/pkg/usecase"
)

const (
	modChannel     = types.ChannelID("CMOD0000001")
	contentChannel = types.ChannelID("C0123456789")
	reporterID     = types.UserID("UREPORTER01")
	offenderID     = types.UserID("UOFFENDER01")
	dmChannel      = types.ChannelID("DREPORTER01")

	testLink = "https://acme.slack.com/archives/C0123456789/p1700000000123456"
)

type fakeChat struct {
	posts    map[types.ChannelID][]string
	dms      map[types.UserID][]string
	messages map[string]*model.SourceMessage
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		posts:    make(map[types.ChannelID][]string),
		dms:      make(map[types.UserID][]string),
		messages: make(map[string]*model.SourceMessage),
	}
}

func (c *fakeChat) PostMessage(ctx context.Context, channelID types.ChannelID, text string) error {
	c.posts[channelID] = append(c.posts[channelID], text)
	return nil
}

func (c *fakeChat) PostDirectMessage(ctx context.Context, userID types.UserID, text string) error {
	c.dms[userID] = append(c.dms[userID], text)
	return nil
}

func (c *fakeChat) LookupMessage(ctx context.Context, teamDomain string, channelID types.ChannelID, ts types.MessageTS) (*model.SourceMessage, error) {
	msg, ok := c.messages[teamDomain+"/"+string(channelID)+"/"+string(ts)]
	if !ok {
		return nil, interfaces.ErrMessageNotFound
	}
	return msg, nil
}

func (c *fakeChat) bind(teamDomain string, msg *model.SourceMessage) {
	c.messages[teamDomain+"/"+string(msg.ChannelID)+"/"+string(msg.Timestamp)] = msg
}

// lastPost returns the most recent message posted to the channel
func (c *fakeChat) lastPost(channelID types.ChannelID) string {
	posts := c.posts[channelID]
	if len(posts) == 0 {
		return ""
	}
	return posts[len(posts)-1]
}

type fakeOracle struct {
	scores map[string]float64
}

func (o *fakeOracle) Analyze(ctx context.Context, text string) (model.Scores, error) {
	v := o.scores[text]
	return model.Scores{
		model.AttrThreat:             v,
		model.AttrToxicity:           v,
		model.AttrThreatExperimental: v,
	}, nil
}

type identityNormalizer struct{}

func (identityNormalizer) Normalize(ctx context.Context, text string) (string, error) {
	return text, nil
}

func setup(oracle interfaces.ScoreClient, opts ...usecase.Option) (*usecase.Coordinator, *fakeChat, interfaces.Repository, *registry.Registry) {
	chat := newFakeChat()
	repo := memory.New()
	reg := registry.New(oracle, identityNormalizer{}, registry.DefaultThresholdConfig())
	coord := usecase.New(chat, repo, reg, modChannel, opts...)
	return coord, chat, repo, reg
}

func targetMessage(text string) *model.SourceMessage {
	return &model.SourceMessage{
		TeamDomain: "acme",
		ChannelID:  contentChannel,
		Timestamp:  types.MessageTS("1700000000.123456"),
		AuthorID:   offenderID,
		AuthorName: "perp",
		Text:       text,
	}
}

func dmStep(t *testing.T, coord *usecase.Coordinator, text string) {
	t.Helper()
	gt.NoError(t, coord.HandleDirectMessage(context.Background(), reporterID, "reporter", dmChannel, text)).Required()
}

func modStep(t *testing.T, coord *usecase.Coordinator, text string) {
	t.Helper()
	msg := &model.SourceMessage{ChannelID: modChannel, AuthorID: "UMOD0000001", Text: text}
	gt.NoError(t, coord.HandleChannelMessage(context.Background(), msg)).Required()
}

func TestReportAndModerationEndToEnd(t *testing.T) {
	coord, chat, repo, reg := setup(&fakeOracle{scores: map[string]float64{}})
	ctx := context.Background()

	chat.bind("acme", targetMessage("threatening post"))

	dmStep(t, coord, "report")
	dmStep(t, coord, testLink)
	dmStep(t, coord, "E") // terrorism, weight 3
	dmStep(t, coord, "Y") // immediate, +2
	dmStep(t, coord, "Y") // livestream, +2
	dmStep(t, coord, "N") // no details

	gt.Value(t, reg.Len()).Equal(1)
	gt.Value(t, strings.Contains(chat.lastPost(dmChannel), "high priority")).Equal(true)
	gt.Value(t, strings.Contains(chat.lastPost(modChannel), "reporter has filed a report")).Equal(true)

	modStep(t, coord, "start")
	gt.Value(t, strings.Contains(chat.lastPost(modChannel), "harm category")).Equal(true)

	modStep(t, coord, "Y") // confirm terrorism
	modStep(t, coord, "Y") // immediate
	modStep(t, coord, "Y") // livestream
	modStep(t, coord, "P") // perpetrator
	gt.Value(t, strings.Contains(chat.lastPost(modChannel), "Recommended: 1,3,4")).Equal(true)

	modStep(t, coord, "1,3,4")

	// Outcome narrated in the content channel and to the offender
	outcome := chat.lastPost(contentChannel)
	gt.Value(t, strings.Contains(outcome, "The post has been removed.")).Equal(true)
	gt.Value(t, strings.Contains(outcome, "The user has been banned")).Equal(true)
	gt.Array(t, chat.dms[offenderID]).Length(2) // outcome + ban notice
	gt.Value(t, strings.Contains(chat.dms[offenderID][1], "banned")).Equal(true)

	// Reporter is notified for human reports
	gt.Array(t, chat.dms[reporterID]).Length(1)
	gt.Value(t, strings.Contains(chat.dms[reporterID][0], "reviewed")).Equal(true)

	// Ban jumps the offender straight to the ban tier
	rec, err := repo.Strike().Get(ctx, offenderID)
	gt.NoError(t, err).Required()
	gt.Value(t, rec.Count).Equal(model.BanStrikeCount)

	// Case archived
	logs, err := repo.CaseLog().List(ctx, 0)
	gt.NoError(t, err).Required()
	gt.Array(t, logs).Length(1)
	gt.Value(t, logs[0].Category).Equal(types.CategoryTerrorism)
	gt.Value(t, logs[0].TargetUserID).Equal(offenderID)

	// Queue drained
	gt.Value(t, reg.Len()).Equal(0)
	gt.Value(t, strings.Contains(chat.lastPost(modChannel), "empty")).Equal(true)
}

func TestDirectMessageHelp(t *testing.T) {
	coord, chat, _, _ := setup(&fakeOracle{})

	dmStep(t, coord, "help")
	gt.Value(t, strings.Contains(chat.lastPost(dmChannel), "`report`")).Equal(true)

	dmStep(t, coord, "hello there")
	gt.Array(t, chat.posts[dmChannel]).Length(2)
}

func TestNextWithEmptyQueue(t *testing.T) {
	coord, chat, _, _ := setup(&fakeOracle{})

	modStep(t, coord, "next")
	gt.Value(t, chat.lastPost(modChannel)).Equal("There are no reports in the queue.")
}

func TestModChannelChatterIgnored(t *testing.T) {
	coord, chat, _, _ := setup(&fakeOracle{})

	modStep(t, coord, "good morning everyone")
	gt.Array(t, chat.posts[modChannel]).Length(0)
}

func TestAutoFlagByThreshold(t *testing.T) {
	coord, chat, _, reg := setup(&fakeOracle{scores: map[string]float64{
		"i will hurt you": 0.95,
		"nice weather":    0.01,
	}})
	ctx := context.Background()

	gt.NoError(t, coord.HandleChannelMessage(ctx, targetMessage("nice weather")))
	gt.Value(t, reg.Len()).Equal(0)

	gt.NoError(t, coord.HandleChannelMessage(ctx, targetMessage("i will hurt you")))
	gt.Value(t, reg.Len()).Equal(1)
	gt.Value(t, strings.Contains(chat.lastPost(modChannel), "flagged automatically")).Equal(true)
}

func TestAutoFlagByBannedOrg(t *testing.T) {
	coord, _, _, reg := setup(
		&fakeOracle{scores: map[string]float64{}},
		usecase.WithBannedOrgs([]string{"Abhorrent Front"}),
	)
	ctx := context.Background()

	gt.NoError(t, coord.HandleChannelMessage(ctx, targetMessage("join the abhorrent front today")))
	gt.Value(t, reg.Len()).Equal(1)

	report := reg.PopNext()
	// No snapshot was built yet
	gt.Value(t, report).Nil()

	reg.BuildQueue(ctx)
	report = reg.PopNext()
	gt.Value(t, report).NotNil()
	gt.Value(t, report.Priority).Equal(3)
	gt.Value(t, report.Category).Equal(types.CategoryTerrorism)
	gt.Value(t, report.AutoGenerated).Equal(true)
}

func TestAutoReportSkipsReporterNotification(t *testing.T) {
	coord, chat, _, _ := setup(&fakeOracle{scores: map[string]float64{
		"i will hurt you": 0.95,
	}})
	ctx := context.Background()

	gt.NoError(t, coord.HandleChannelMessage(ctx, targetMessage("i will hurt you")))

	modStep(t, coord, "next")
	gt.Value(t, strings.Contains(chat.lastPost(modChannel), "generated automatically")).Equal(true)

	modStep(t, coord, "E") // classify as terrorism
	modStep(t, coord, "N") // not immediate
	modStep(t, coord, "2") // flag only

	// Nobody filed this report, so only the offender hears back
	gt.Array(t, chat.dms[reporterID]).Length(0)
	gt.Array(t, chat.dms[offenderID]).Length(2) // outcome + strike warning
}

func TestStrikeAccumulation(t *testing.T) {
	coord, chat, repo, _ := setup(&fakeOracle{scores: map[string]float64{}})
	ctx := context.Background()

	adjudicate := func(link string, decision string) {
		dmStep(t, coord, "report")
		dmStep(t, coord, link)
		dmStep(t, coord, "C") // harassment
		dmStep(t, coord, "N") // not immediate
		dmStep(t, coord, "N") // no details
		modStep(t, coord, "next")
		modStep(t, coord, "Y")
		modStep(t, coord, "N")
		modStep(t, coord, decision)
	}

	first := targetMessage("rude post")
	chat.bind("acme", first)
	second := targetMessage("another rude post")
	second.Timestamp = types.MessageTS("1700000001.000001")
	chat.bind("acme", second)
	third := targetMessage("yet another rude post")
	third.Timestamp = types.MessageTS("1700000002.000002")
	chat.bind("acme", third)

	adjudicate(testLink, "1,2")
	rec, err := repo.Strike().Get(ctx, offenderID)
	gt.NoError(t, err).Required()
	gt.Value(t, rec.Count).Equal(1)
	gt.Value(t, strings.Contains(chat.dms[offenderID][len(chat.dms[offenderID])-1], "strike 1 of 3")).Equal(true)

	adjudicate("https://acme.slack.com/archives/C0123456789/p1700000001000001", "1,2")
	rec, err = repo.Strike().Get(ctx, offenderID)
	gt.NoError(t, err).Required()
	gt.Value(t, rec.Count).Equal(2)
	gt.Value(t, strings.Contains(chat.dms[offenderID][len(chat.dms[offenderID])-1], "strike 2 of 3")).Equal(true)

	// The third strike bans the user even though no moderator ever selected
	// the ban action, and the ban is announced everywhere.
	adjudicate("https://acme.slack.com/archives/C0123456789/p1700000002000002", "1,3")
	rec, err = repo.Strike().Get(ctx, offenderID)
	gt.NoError(t, err).Required()
	gt.Value(t, rec.Count).Equal(3)
	gt.Value(t, rec.Banned()).Equal(true)
	gt.Value(t, chat.dms[offenderID][len(chat.dms[offenderID])-1]).Equal("You have been banned from our platform.")

	banNotices := 0
	for _, post := range chat.posts[contentChannel] {
		if strings.Contains(post, "has been banned") {
			banNotices++
		}
	}
	gt.Number(t, banNotices).Equal(1)
	gt.Value(t, strings.Contains(strings.Join(chat.posts[modChannel], "\n"), "has reached 3 strikes and has been banned")).Equal(true)
}

func TestModeratorCancelRequeues(t *testing.T) {
	coord, chat, _, reg := setup(&fakeOracle{scores: map[string]float64{}})

	chat.bind("acme", targetMessage("rude post"))

	dmStep(t, coord, "report")
	dmStep(t, coord, testLink)
	dmStep(t, coord, "C")
	dmStep(t, coord, "N")
	dmStep(t, coord, "N")
	gt.Value(t, reg.Len()).Equal(1)

	modStep(t, coord, "start")
	modStep(t, coord, "cancel")
	gt.Value(t, reg.Len()).Equal(1)

	modStep(t, coord, "next")
	gt.Value(t, strings.Contains(chat.lastPost(modChannel), "harm category")).Equal(true)
}

func TestThresholdAdaptsAfterActionedCase(t *testing.T) {
	coord, chat, _, reg := setup(&fakeOracle{scores: map[string]float64{
		"rude post": 0.9,
	}})

	chat.bind("acme", targetMessage("rude post"))

	dmStep(t, coord, "report")
	dmStep(t, coord, testLink)
	dmStep(t, coord, "C")
	dmStep(t, coord, "N")
	dmStep(t, coord, "N")

	modStep(t, coord, "start") // queue build scores the target at 90
	modStep(t, coord, "Y")
	modStep(t, coord, "N")
	modStep(t, coord, "2")

	gt.Value(t, reg.Threshold()).Equal(0.9*0.7 + 0.1*0.9)
}
