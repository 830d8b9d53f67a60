package analytics

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"referral-backend/internal/database"
)

// ReferralStats is a point-in-time read model over one user's referrals. It is
// recomputed from source rows on every call and carries no consistency
// guarantee across concurrent mutations.
type ReferralStats struct {
	Total            int     `json:"total"`
	Pending          int     `json:"pending"`
	Contacted        int     `json:"contacted"`
	Converted        int     `json:"converted"`
	Rewarded         int     `json:"rewarded"`
	ConversionRate   float64 `json:"conversion_rate"`
	TotalRewardValue float64 `json:"total_reward_value"`
}

type CampaignStats struct {
	CampaignId   uint   `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	ReferralStats
}

// Aggregator computes referral and campaign statistics from raw rows. It is
// ownership-agnostic: scoping the input (user id, campaign id) is the
// caller's responsibility.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

func (a *Aggregator) ReferralStats(ctx context.Context, userId uint) (ReferralStats, error) {
	var referrals []database.Referral
	if err := a.db.WithContext(ctx).Where("user_id = ?", userId).Find(&referrals).Error; err != nil {
		return ReferralStats{}, fmt.Errorf("error fetching referrals: %w", err)
	}

	stats := tally(referrals)

	var total float64
	err := a.db.WithContext(ctx).Model(&database.Reward{}).
		Where("user_id = ?", userId).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return ReferralStats{}, fmt.Errorf("error summing rewards: %w", err)
	}
	stats.TotalRewardValue = total

	return stats, nil
}

// CampaignStats aggregates the referrals attached to a single campaign.
// Returns gorm.ErrRecordNotFound if the campaign does not exist.
func (a *Aggregator) CampaignStats(ctx context.Context, campaignId uint) (CampaignStats, error) {
	var campaign database.Campaign
	if err := a.db.WithContext(ctx).First(&campaign, "id = ?", campaignId).Error; err != nil {
		return CampaignStats{}, err
	}

	var referrals []database.Referral
	if err := a.db.WithContext(ctx).Where("campaign_id = ?", campaignId).Find(&referrals).Error; err != nil {
		return CampaignStats{}, fmt.Errorf("error fetching campaign referrals: %w", err)
	}

	stats := CampaignStats{
		CampaignId:    campaign.Id,
		CampaignName:  campaign.Name,
		ReferralStats: tally(referrals),
	}

	var total float64
	err := a.db.WithContext(ctx).Model(&database.Reward{}).
		Joins("JOIN referrals ON referrals.id = rewards.referral_id").
		Where("referrals.campaign_id = ?", campaignId).
		Select("COALESCE(SUM(rewards.amount), 0)").
		Scan(&total).Error
	if err != nil {
		return CampaignStats{}, fmt.Errorf("error summing campaign rewards: %w", err)
	}
	stats.TotalRewardValue = total

	return stats, nil
}

// Campaigns lists a user's campaigns for callers that need to resolve
// campaign references (the assistant's mention detection).
func (a *Aggregator) Campaigns(ctx context.Context, userId uint) ([]database.Campaign, error) {
	var campaigns []database.Campaign
	if err := a.db.WithContext(ctx).Where("user_id = ?", userId).Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("error fetching campaigns: %w", err)
	}
	return campaigns, nil
}

// tally is a single pass over the referral rows. Zero referrals yields
// zero-valued stats, never a division fault.
func tally(referrals []database.Referral) ReferralStats {
	stats := ReferralStats{Total: len(referrals)}
	for _, r := range referrals {
		switch r.Status {
		case database.ReferralPending:
			stats.Pending++
		case database.ReferralContacted:
			stats.Contacted++
		case database.ReferralConverted:
			stats.Converted++
		case database.ReferralRewarded:
			stats.Rewarded++
		}
	}
	if stats.Total > 0 {
		stats.ConversionRate = float64(stats.Converted) / float64(stats.Total)
	}
	return stats
}
