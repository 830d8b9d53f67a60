package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"referral-backend/internal/analytics"
	"referral-backend/internal/database"
)

// AnalyticsService exposes the read-only statistics endpoints. Ownership of
// the referenced campaign is checked here; the aggregator itself trusts its
// input scope.
type AnalyticsService struct {
	db         *gorm.DB
	aggregator *analytics.Aggregator
}

func NewAnalyticsService(db *gorm.DB, aggregator *analytics.Aggregator) *AnalyticsService {
	return &AnalyticsService{db: db, aggregator: aggregator}
}

func (s *AnalyticsService) AddRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/referrals", RestHandler(s.GetReferralStats))
		r.Get("/campaigns/{campaign_id}", RestHandler(s.GetCampaignStats))
	})
}

func (s *AnalyticsService) GetReferralStats(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	return s.aggregator.ReferralStats(r.Context(), userId)
}

func (s *AnalyticsService) GetCampaignStats(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	campaignId, err := URLParamId(r, "campaign_id")
	if err != nil {
		return nil, err
	}

	var campaign database.Campaign
	err = s.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", campaignId, userId).First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, CodedErrorf(http.StatusNotFound, "campaign not found")
	}
	if err != nil {
		return nil, err
	}

	return s.aggregator.CampaignStats(r.Context(), campaign.Id)
}
