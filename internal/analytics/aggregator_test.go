package analytics_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"referral-backend/internal/analytics"
	"referral-backend/internal/database"
)

func createDB(t *testing.T, create ...any) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.GetMigrator(db).Migrate())

	for _, c := range create {
		require.NoError(t, db.Create(c).Error)
	}

	return db
}

func referral(userId, campaignId uint, status string) *database.Referral {
	return &database.Referral{
		UserId:     userId,
		CampaignId: campaignId,
		CustomerId: 1,
		Status:     status,
		Code:       uuid.New(),
	}
}

func TestReferralStatsEmpty(t *testing.T) {
	aggregator := analytics.NewAggregator(createDB(t))

	stats, err := aggregator.ReferralStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, analytics.ReferralStats{}, stats)
	assert.Equal(t, 0.0, stats.ConversionRate)
}

func TestReferralStatsCounts(t *testing.T) {
	aggregator := analytics.NewAggregator(createDB(t,
		&database.Campaign{Id: 1, UserId: 1, Name: "Spring Promo"},
		&database.Customer{Id: 1, UserId: 1, Name: "Grace"},
		referral(1, 1, database.ReferralConverted),
		referral(1, 1, database.ReferralConverted),
		referral(1, 1, database.ReferralPending),
	))

	stats, err := aggregator.ReferralStats(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Converted)
	assert.Equal(t, 1, stats.Pending)
	assert.InDelta(t, 2.0/3.0, stats.ConversionRate, 1e-9)
}

func TestReferralStatsScopedToUser(t *testing.T) {
	aggregator := analytics.NewAggregator(createDB(t,
		&database.Campaign{Id: 1, UserId: 1, Name: "Mine"},
		&database.Campaign{Id: 2, UserId: 2, Name: "Theirs"},
		&database.Customer{Id: 1, UserId: 1, Name: "Grace"},
		referral(1, 1, database.ReferralConverted),
		referral(2, 2, database.ReferralPending),
		referral(2, 2, database.ReferralPending),
	))

	stats, err := aggregator.ReferralStats(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 0, stats.Converted)
	assert.Equal(t, 0.0, stats.ConversionRate)
}

func TestReferralStatsSumsRewards(t *testing.T) {
	db := createDB(t,
		&database.Campaign{Id: 1, UserId: 1, Name: "Mine"},
		&database.Campaign{Id: 2, UserId: 2, Name: "Theirs"},
		&database.Customer{Id: 1, UserId: 1, Name: "Grace"},
		referral(1, 1, database.ReferralRewarded),
		referral(2, 2, database.ReferralRewarded),
	)
	require.NoError(t, db.Create(&database.Reward{UserId: 1, ReferralId: 1, Amount: 25, Status: database.RewardPaid}).Error)
	require.NoError(t, db.Create(&database.Reward{UserId: 1, ReferralId: 1, Amount: 10, Status: database.RewardPending}).Error)
	require.NoError(t, db.Create(&database.Reward{UserId: 2, ReferralId: 2, Amount: 99, Status: database.RewardPaid}).Error)

	aggregator := analytics.NewAggregator(db)

	stats, err := aggregator.ReferralStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 35.0, stats.TotalRewardValue)
}

func TestCampaignStats(t *testing.T) {
	db := createDB(t,
		&database.Campaign{Id: 5, UserId: 1, Name: "Spring Promo"},
		&database.Campaign{Id: 9, UserId: 1, Name: "Other"},
		&database.Customer{Id: 1, UserId: 1, Name: "Grace"},
		referral(1, 5, database.ReferralConverted),
		referral(1, 5, database.ReferralContacted),
		referral(1, 9, database.ReferralConverted),
	)

	aggregator := analytics.NewAggregator(db)

	stats, err := aggregator.CampaignStats(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, uint(5), stats.CampaignId)
	assert.Equal(t, "Spring Promo", stats.CampaignName)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Converted)
	assert.Equal(t, 1, stats.Contacted)
	assert.InDelta(t, 0.5, stats.ConversionRate, 1e-9)
}

func TestCampaignStatsRewardsScopedToCampaign(t *testing.T) {
	db := createDB(t,
		&database.Campaign{Id: 5, UserId: 1, Name: "Spring Promo"},
		&database.Campaign{Id: 6, UserId: 1, Name: "Other"},
		&database.Customer{Id: 1, UserId: 1, Name: "Grace"},
		referral(1, 5, database.ReferralRewarded),
		referral(1, 6, database.ReferralRewarded),
	)
	require.NoError(t, db.Create(&database.Reward{UserId: 1, ReferralId: 1, Amount: 40}).Error)
	require.NoError(t, db.Create(&database.Reward{UserId: 1, ReferralId: 2, Amount: 60}).Error)

	aggregator := analytics.NewAggregator(db)

	stats, err := aggregator.CampaignStats(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 40.0, stats.TotalRewardValue)
}

func TestCampaignStatsUnknownCampaign(t *testing.T) {
	aggregator := analytics.NewAggregator(createDB(t))

	_, err := aggregator.CampaignStats(context.Background(), 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCampaigns(t *testing.T) {
	aggregator := analytics.NewAggregator(createDB(t,
		&database.Campaign{Id: 1, UserId: 1, Name: "A"},
		&database.Campaign{Id: 2, UserId: 2, Name: "B"},
	))

	campaigns, err := aggregator.Campaigns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "A", campaigns[0].Name)
}
