package assistant

import (
	"fmt"
	"strings"

	"referral-backend/internal/analytics"
	"referral-backend/internal/database"
)

const assistantSystemPrompt = `You are a helpful assistant embedded in a referral management platform. ` +
	`You help the user understand their referral program: customers, campaigns, referrals and rewards. ` +
	`A summary of the user's current account statistics is provided with each request; ` +
	`use it to give specific, actionable answers. Keep responses concise.`

const sharingSystemPrompt = `You write short, friendly referral invitations that a customer can share with friends. ` +
	`One or two sentences, no subject line, no placeholders.`

const followUpSystemPrompt = `You suggest the single best next action to move a referral forward. ` +
	`Answer in one or two sentences addressed to the account owner.`

func statsContext(stats analytics.ReferralStats, campaign *analytics.CampaignStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current account statistics: %d referrals total (%d pending, %d contacted, %d converted, %d rewarded), ",
		stats.Total, stats.Pending, stats.Contacted, stats.Converted, stats.Rewarded)
	fmt.Fprintf(&b, "conversion rate %.1f%%, total reward value %.2f.", stats.ConversionRate*100, stats.TotalRewardValue)

	if campaign != nil {
		fmt.Fprintf(&b, "\nCampaign %q: %d referrals (%d pending, %d contacted, %d converted, %d rewarded), conversion rate %.1f%%, reward value %.2f.",
			campaign.CampaignName, campaign.Total, campaign.Pending, campaign.Contacted,
			campaign.Converted, campaign.Rewarded, campaign.ConversionRate*100, campaign.TotalRewardValue)
	}

	return b.String()
}

func sharingPrompt(customer database.Customer, campaign database.Campaign) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a referral invitation for customer %s to share with friends.\n", customer.Name)
	fmt.Fprintf(&b, "Campaign: %s.", campaign.Name)
	if campaign.Description != "" {
		fmt.Fprintf(&b, " Details: %s.", campaign.Description)
	}
	if campaign.RewardAmount > 0 {
		fmt.Fprintf(&b, " Referral reward: %.2f.", campaign.RewardAmount)
	}
	return b.String()
}

func followUpPrompt(referral database.Referral) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Referral status: %s.", referral.Status)
	if referral.ReferredName != "" {
		fmt.Fprintf(&b, " Referred contact: %s.", referral.ReferredName)
	}
	if referral.Campaign != nil {
		fmt.Fprintf(&b, " Campaign: %s.", referral.Campaign.Name)
	}
	b.WriteString(" What is the best next step?")
	return b.String()
}
