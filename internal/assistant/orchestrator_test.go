package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"referral-backend/internal/analytics"
	"referral-backend/internal/database"
)

type mockLLM struct {
	mu    sync.Mutex
	calls [][]Message
	reply string
	err   error
}

func (m *mockLLM) Generate(ctx context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, messages)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) lastCall(t *testing.T) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.calls)
	return m.calls[len(m.calls)-1]
}

func createDB(t *testing.T, create ...any) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.GetMigrator(db).Migrate())

	for _, c := range create {
		require.NoError(t, db.Create(c).Error)
	}

	return db
}

func newTestAssistant(t *testing.T, llm LLM, create ...any) *Assistant {
	db := createDB(t, create...)
	return NewAssistant(NewConversationStore(), llm, analytics.NewAggregator(db))
}

func TestRespondAppendsBothTurns(t *testing.T) {
	llm := &mockLLM{reply: "you have no referrals yet"}
	asst := newTestAssistant(t, llm)

	reply, err := asst.Respond(context.Background(), 1, "how is my program doing?")
	require.NoError(t, err)
	assert.Equal(t, "you have no referrals yet", reply)

	history := asst.History(1)
	require.Len(t, history, 3)
	assert.Equal(t, RoleSystem, history[0].Role)
	assert.Equal(t, Message{Role: RoleUser, Content: "how is my program doing?"}, history[1])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "you have no referrals yet"}, history[2])
}

func TestRespondFoldsStatsIntoPrompt(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	asst := newTestAssistant(t, llm,
		&database.Campaign{Id: 1, UserId: 1, Name: "Launch"},
		&database.Customer{Id: 1, UserId: 1, Name: "Grace"},
		&database.Referral{UserId: 1, CampaignId: 1, CustomerId: 1, Status: database.ReferralConverted, Code: uuid.New()},
		&database.Referral{UserId: 1, CampaignId: 1, CustomerId: 1, Status: database.ReferralPending, Code: uuid.New()},
	)

	_, err := asst.Respond(context.Background(), 1, "hello")
	require.NoError(t, err)

	prompt := llm.lastCall(t)
	require.Len(t, prompt, 3)
	assert.Equal(t, RoleSystem, prompt[0].Role)
	assert.Equal(t, RoleSystem, prompt[1].Role)
	assert.Contains(t, prompt[1].Content, "2 referrals total")
	assert.Contains(t, prompt[1].Content, "1 converted")
	assert.Equal(t, Message{Role: RoleUser, Content: "hello"}, prompt[2])

	// The stats context is per-request only, never stored.
	for _, msg := range asst.History(1)[1:] {
		assert.NotEqual(t, RoleSystem, msg.Role)
	}
}

func TestRespondIncludesMentionedCampaign(t *testing.T) {
	llm := &mockLLM{reply: "ok"}
	asst := newTestAssistant(t, llm,
		&database.Campaign{Id: 7, UserId: 1, Name: "Spring Promo"},
		&database.Customer{Id: 1, UserId: 1, Name: "Grace"},
		&database.Referral{UserId: 1, CampaignId: 7, CustomerId: 1, Status: database.ReferralConverted, Code: uuid.New()},
	)

	_, err := asst.Respond(context.Background(), 1, "how is spring promo going?")
	require.NoError(t, err)

	prompt := llm.lastCall(t)
	assert.Contains(t, prompt[1].Content, `Campaign "Spring Promo"`)
	assert.Contains(t, prompt[1].Content, "1 referrals")
}

func TestFailedModelCallLeavesHistoryUntouched(t *testing.T) {
	llm := &mockLLM{reply: "first"}
	asst := newTestAssistant(t, llm)

	_, err := asst.Respond(context.Background(), 1, "one")
	require.NoError(t, err)
	before := asst.History(1)

	llm.err = errors.New("provider timeout")
	_, err = asst.Respond(context.Background(), 1, "two")
	require.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, before, asst.History(1))

	// Retrying the same request after recovery is safe.
	llm.err = nil
	llm.reply = "second"
	_, err = asst.Respond(context.Background(), 1, "two")
	require.NoError(t, err)
	assert.Len(t, asst.History(1), len(before)+2)
}

func TestSharingMessageIsStateless(t *testing.T) {
	llm := &mockLLM{reply: "Join Spring Promo and we both win!"}
	asst := newTestAssistant(t, llm)

	msg, err := asst.SharingMessage(context.Background(),
		database.Customer{Id: 1, UserId: 1, Name: "Ada"},
		database.Campaign{Id: 1, UserId: 1, Name: "Spring Promo", RewardAmount: 25},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	assert.Nil(t, asst.History(1))

	prompt := llm.lastCall(t)
	require.Len(t, prompt, 2)
	assert.Contains(t, prompt[1].Content, "Ada")
	assert.Contains(t, prompt[1].Content, "Spring Promo")
}

func TestSuggestFollowUpIsStateless(t *testing.T) {
	llm := &mockLLM{reply: "Send a reminder email."}
	asst := newTestAssistant(t, llm)

	suggestion, err := asst.SuggestFollowUp(context.Background(), database.Referral{
		Id: 1, UserId: 1, Status: database.ReferralContacted, ReferredName: "Grace",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, suggestion)
	assert.Nil(t, asst.History(1))

	prompt := llm.lastCall(t)
	assert.Contains(t, prompt[1].Content, "contacted")
	assert.Contains(t, prompt[1].Content, "Grace")
}

func TestSingleShotFailuresSurfaceModelUnavailable(t *testing.T) {
	llm := &mockLLM{err: errors.New("boom")}
	asst := newTestAssistant(t, llm)

	_, err := asst.SharingMessage(context.Background(), database.Customer{}, database.Campaign{})
	assert.ErrorIs(t, err, ErrModelUnavailable)

	_, err = asst.SuggestFollowUp(context.Background(), database.Referral{})
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestMatchCampaignIsCaseInsensitive(t *testing.T) {
	campaigns := []database.Campaign{
		{Id: 1, Name: "Spring Promo"},
		{Id: 2, Name: "Holiday Blitz"},
	}

	match := matchCampaign("what about the HOLIDAY BLITZ numbers?", campaigns)
	require.NotNil(t, match)
	assert.Equal(t, uint(2), match.Id)

	assert.Nil(t, matchCampaign("nothing relevant", campaigns))

	// Campaigns with empty names never match everything.
	assert.Nil(t, matchCampaign("anything", []database.Campaign{{Id: 3, Name: ""}}))
}

func TestUnavailableMessageMentionsAssistant(t *testing.T) {
	assert.True(t, strings.Contains(strings.ToLower(UnavailableMessage), "unavailable"))
}
