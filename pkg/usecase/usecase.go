package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/modsec-lab/aegis/pkg/flow"
	"github.com/modsec-lab/aegis/pkg/registry"
	"github.com/modsec-lab/aegis/pkg/utils/errutil"
)

// Coordinator routes inbound chat events to the reporter and moderator
// dialogues and owns their shared state. All event handling is serialized:
// one event runs to completion before the next is admitted, which is why the
// registry and the flows carry no locking of their own.
type Coordinator struct {
	mu sync.Mutex

	chat     interfaces.ChatService
	repo     interfaces.Repository
	registry *registry.Registry

	modChannelID types.ChannelID
	bannedOrgs   []string
	categories   []flow.CategoryOption

	// composing holds at most one in-flight reporter dialogue per user
	composing map[types.UserID]*flow.ReportFlow

	// active is the single system-wide moderation dialogue
	active *flow.ModeratorFlow
}

type Option func(*Coordinator)

// WithBannedOrgs sets the organization tokens that force an automatic report
// regardless of the toxicity score. Matching is case-insensitive against the
// normalized message text.
func WithBannedOrgs(orgs []string) Option {
	return func(c *Coordinator) {
		c.bannedOrgs = make([]string, 0, len(orgs))
		for _, org := range orgs {
			if org = strings.ToLower(strings.TrimSpace(org)); org != "" {
				c.bannedOrgs = append(c.bannedOrgs, org)
			}
		}
	}
}

// WithCategories overrides the category option table used by both dialogues
func WithCategories(options []flow.CategoryOption) Option {
	return func(c *Coordinator) {
		c.categories = options
	}
}

func New(chat interfaces.ChatService, repo interfaces.Repository, reg *registry.Registry, modChannelID types.ChannelID, opts ...Option) *Coordinator {
	c := &Coordinator{
		chat:         chat,
		repo:         repo,
		registry:     reg,
		modChannelID: modChannelID,
		composing:    make(map[types.UserID]*flow.ReportFlow),
		categories:   flow.DefaultCategories(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ModChannelID returns the moderation channel the coordinator listens on
func (c *Coordinator) ModChannelID() types.ChannelID {
	return c.modChannelID
}

func (c *Coordinator) post(ctx context.Context, channelID types.ChannelID, replies ...string) {
	for _, reply := range replies {
		if err := c.chat.PostMessage(ctx, channelID, reply); err != nil {
			errutil.Handle(ctx, err, "failed to post message")
		}
	}
}

func (c *Coordinator) dm(ctx context.Context, userID types.UserID, text string) {
	if err := c.chat.PostDirectMessage(ctx, userID, text); err != nil {
		errutil.Handle(ctx, err, "failed to send direct message")
	}
}
