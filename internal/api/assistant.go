package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"referral-backend/internal/assistant"
	"referral-backend/internal/database"
	"referral-backend/pkg/api"
)

const previewLength = 30

// AssistantService exposes the conversational assistant and the single-shot
// generation endpoints.
type AssistantService struct {
	db        *gorm.DB
	assistant *assistant.Assistant
}

func NewAssistantService(db *gorm.DB, asst *assistant.Assistant) *AssistantService {
	return &AssistantService{db: db, assistant: asst}
}

func (s *AssistantService) AddRoutes(r chi.Router) {
	r.Route("/ai", func(r chi.Router) {
		r.Post("/assistant", RestHandler(s.Assistant))
		r.Post("/sharing-message", RestHandler(s.SharingMessage))
		r.Post("/follow-up", RestHandler(s.FollowUp))
	})
}

func (s *AssistantService) Assistant(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.AssistantRequest](r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "message must not be empty")
	}

	response, err := s.assistant.Respond(r.Context(), userId, req.Message)
	if err != nil {
		if errors.Is(err, assistant.ErrModelUnavailable) {
			return nil, CodedErrorf(http.StatusServiceUnavailable, "%s", assistant.UnavailableMessage)
		}
		return nil, err
	}

	database.CreateActivity(r.Context(), s.db, userId, "ai_interaction", //nolint:errcheck
		fmt.Sprintf("Used AI assistant: %q", messagePreview(req.Message)), nil)

	return api.AssistantResponse{Response: response}, nil
}

func (s *AssistantService) SharingMessage(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.SharingMessageRequest](r)
	if err != nil {
		return nil, err
	}

	var customer database.Customer
	err = s.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", req.CustomerId, userId).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, CodedErrorf(http.StatusNotFound, "customer not found")
	}
	if err != nil {
		return nil, err
	}

	var campaign database.Campaign
	err = s.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", req.CampaignId, userId).First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, CodedErrorf(http.StatusNotFound, "campaign not found")
	}
	if err != nil {
		return nil, err
	}

	message, err := s.assistant.SharingMessage(r.Context(), customer, campaign)
	if err != nil {
		if errors.Is(err, assistant.ErrModelUnavailable) {
			return nil, CodedErrorf(http.StatusServiceUnavailable, "%s", assistant.UnavailableMessage)
		}
		return nil, err
	}

	return api.SharingMessageResponse{Message: message}, nil
}

func (s *AssistantService) FollowUp(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.FollowUpRequest](r)
	if err != nil {
		return nil, err
	}

	var referral database.Referral
	err = s.db.WithContext(r.Context()).
		Preload("Campaign").
		Where("id = ? AND user_id = ?", req.ReferralId, userId).
		First(&referral).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, CodedErrorf(http.StatusNotFound, "referral not found")
	}
	if err != nil {
		return nil, err
	}

	suggestion, err := s.assistant.SuggestFollowUp(r.Context(), referral)
	if err != nil {
		if errors.Is(err, assistant.ErrModelUnavailable) {
			return nil, CodedErrorf(http.StatusServiceUnavailable, "%s", assistant.UnavailableMessage)
		}
		return nil, err
	}

	return api.FollowUpResponse{Suggestion: suggestion}, nil
}

// messagePreview truncates to the first 30 characters for the activity feed,
// appending an ellipsis when the message is longer.
func messagePreview(message string) string {
	runes := []rune(message)
	if len(runes) <= previewLength {
		return message
	}
	return string(runes[:previewLength]) + "..."
}
