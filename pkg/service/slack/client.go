// Package slack implements the chat transport on the Slack Web API.
package slack

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/model"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/slack-go/slack"
)

type client struct {
	api *slack.Client

	mu         sync.Mutex
	teamID     types.TeamID
	teamDomain string
	dmCache    map[types.UserID]types.ChannelID
}

var _ interfaces.ChatService = &client{}

// New creates a new Slack chat service with the provided bot token
func New(token string) (interfaces.ChatService, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	return &client{
		api:     slack.New(token),
		dmCache: make(map[types.UserID]types.ChannelID),
	}, nil
}

// PostMessage sends text to a channel
func (c *client) PostMessage(ctx context.Context, channelID types.ChannelID, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID.String(), slack.MsgOptionText(text, false))
	if err != nil {
		return goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return nil
}

// PostDirectMessage opens (or reuses) a DM with the user and sends text to it
func (c *client) PostDirectMessage(ctx context.Context, userID types.UserID, text string) error {
	channelID, err := c.dmChannel(ctx, userID)
	if err != nil {
		return err
	}
	return c.PostMessage(ctx, channelID, text)
}

func (c *client) dmChannel(ctx context.Context, userID types.UserID) (types.ChannelID, error) {
	c.mu.Lock()
	if cached, ok := c.dmCache[userID]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	ch, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID.String()},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to open DM conversation", goerr.V("user_id", userID))
	}

	channelID := types.ChannelID(ch.ID)
	c.mu.Lock()
	c.dmCache[userID] = channelID
	c.mu.Unlock()
	return channelID, nil
}

// LookupMessage resolves a permalink triple to the referenced message
func (c *client) LookupMessage(ctx context.Context, teamDomain string, channelID types.ChannelID, ts types.MessageTS) (*model.SourceMessage, error) {
	ownDomain, teamID, err := c.ownTeam(ctx)
	if err != nil {
		return nil, err
	}
	if teamDomain != ownDomain {
		return nil, goerr.Wrap(interfaces.ErrUnknownWorkspace, "permalink points to another workspace",
			goerr.V("team_domain", teamDomain))
	}

	if _, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID.String(),
	}); err != nil {
		return nil, goerr.Wrap(interfaces.ErrUnknownChannel, "failed to resolve channel",
			goerr.V("channel_id", channelID))
	}

	history, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID.String(),
		Latest:    ts.String(),
		Oldest:    ts.String(),
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return nil, goerr.Wrap(interfaces.ErrMessageNotFound, "failed to fetch message",
			goerr.V("channel_id", channelID), goerr.V("ts", ts))
	}
	if len(history.Messages) == 0 {
		return nil, goerr.Wrap(interfaces.ErrMessageNotFound, "message not in channel history",
			goerr.V("channel_id", channelID), goerr.V("ts", ts))
	}

	msg := history.Messages[0]
	authorName := msg.User
	if user, err := c.api.GetUserInfoContext(ctx, msg.User); err == nil {
		authorName = user.Name
	}

	return &model.SourceMessage{
		TeamID:     teamID,
		TeamDomain: teamDomain,
		ChannelID:  channelID,
		Timestamp:  ts,
		AuthorID:   types.UserID(msg.User),
		AuthorName: authorName,
		Text:       msg.Text,
	}, nil
}

func (c *client) ownTeam(ctx context.Context) (string, types.TeamID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.teamDomain != "" {
		return c.teamDomain, c.teamID, nil
	}

	info, err := c.api.GetTeamInfoContext(ctx)
	if err != nil {
		return "", "", goerr.Wrap(err, "failed to get team info")
	}
	c.teamDomain = info.Domain
	c.teamID = types.TeamID(info.ID)
	return c.teamDomain, c.teamID, nil
}
