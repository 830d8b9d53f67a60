package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"referral-backend/internal/analytics"
	"referral-backend/internal/database"
)

// ErrModelUnavailable is returned whenever the external completion call fails,
// including caller-imposed timeouts. The conversation history is guaranteed to
// be untouched when it is returned, so retrying the same request is safe.
var ErrModelUnavailable = errors.New("assistant model unavailable")

// UnavailableMessage is the generic user-facing text for ErrModelUnavailable.
const UnavailableMessage = "The assistant is currently unavailable. Please try again in a moment."

// Assistant turns one (user, message) request into one model-backed response,
// keeping the user's bounded conversation history consistent.
type Assistant struct {
	store     *ConversationStore
	llm       LLM
	analytics *analytics.Aggregator
}

func NewAssistant(store *ConversationStore, llm LLM, aggregator *analytics.Aggregator) *Assistant {
	return &Assistant{store: store, llm: llm, analytics: aggregator}
}

// Respond fetches the user's history, folds in current account statistics,
// invokes the model, and appends the completed turn. The model call happens
// without holding any history lock; a concurrent request from the same user
// may therefore build its prompt from a pre-call snapshot, which is an
// accepted staleness window since histories are advisory context.
//
// A failed model call mutates nothing: the appended pair is both-present or
// neither-present.
func (a *Assistant) Respond(ctx context.Context, userId uint, message string) (string, error) {
	history := a.store.GetOrCreate(userId, assistantSystemPrompt)

	stats, err := a.analytics.ReferralStats(ctx, userId)
	if err != nil {
		return "", fmt.Errorf("error computing referral stats: %w", err)
	}

	var campaignStats *analytics.CampaignStats
	campaigns, err := a.analytics.Campaigns(ctx, userId)
	if err != nil {
		return "", err
	}
	if c := matchCampaign(message, campaigns); c != nil {
		cs, err := a.analytics.CampaignStats(ctx, c.Id)
		if err != nil {
			return "", fmt.Errorf("error computing campaign stats: %w", err)
		}
		campaignStats = &cs
	}

	prompt := make([]Message, 0, len(history)+2)
	prompt = append(prompt, history...)
	prompt = append(prompt, Message{Role: RoleSystem, Content: statsContext(stats, campaignStats)})
	prompt = append(prompt, Message{Role: RoleUser, Content: message})

	reply, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	a.store.AppendTurn(userId, message, reply)
	return reply, nil
}

// History exposes a read-only snapshot of the user's conversation.
func (a *Assistant) History(userId uint) []Message {
	return a.store.Read(userId)
}

// SharingMessage generates a shareable referral invitation for a customer.
// Single-shot: no conversation history is read or written.
func (a *Assistant) SharingMessage(ctx context.Context, customer database.Customer, campaign database.Campaign) (string, error) {
	reply, err := a.llm.Generate(ctx, []Message{
		{Role: RoleSystem, Content: sharingSystemPrompt},
		{Role: RoleUser, Content: sharingPrompt(customer, campaign)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return reply, nil
}

// SuggestFollowUp recommends a next action for a referral. Single-shot.
func (a *Assistant) SuggestFollowUp(ctx context.Context, referral database.Referral) (string, error) {
	reply, err := a.llm.Generate(ctx, []Message{
		{Role: RoleSystem, Content: followUpSystemPrompt},
		{Role: RoleUser, Content: followUpPrompt(referral)},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return reply, nil
}

// matchCampaign returns the first of the user's campaigns whose name appears
// in the message, case-insensitively.
func matchCampaign(message string, campaigns []database.Campaign) *database.Campaign {
	lower := strings.ToLower(message)
	for i := range campaigns {
		name := strings.ToLower(campaigns[i].Name)
		if name != "" && strings.Contains(lower, name) {
			return &campaigns[i]
		}
	}
	return nil
}
