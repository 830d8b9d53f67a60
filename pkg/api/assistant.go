package api

type AssistantRequest struct {
	Message string `json:"message"`
}

type AssistantResponse struct {
	Response string `json:"response"`
}

type SharingMessageRequest struct {
	CustomerId uint `json:"customer_id"`
	CampaignId uint `json:"campaign_id"`
}

type SharingMessageResponse struct {
	Message string `json:"message"`
}

type FollowUpRequest struct {
	ReferralId uint `json:"referral_id"`
}

type FollowUpResponse struct {
	Suggestion string `json:"suggestion"`
}
