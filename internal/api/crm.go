package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"referral-backend/internal/database"
	"referral-backend/pkg/api"
)

// CRMService exposes the CRUD surface over customers, campaigns, referrals,
// rewards and the activity feed. Every row is scoped to the authenticated
// user; rows belonging to someone else answer 404, never 403, so ids are not
// probeable.
type CRMService struct {
	db *gorm.DB
}

func NewCRMService(db *gorm.DB) *CRMService {
	return &CRMService{db: db}
}

func (s *CRMService) AddRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListCustomers))
		r.Post("/", RestHandler(s.CreateCustomer))
		r.Post("/import", RestHandler(s.ImportCustomers))
		r.Get("/{customer_id}", RestHandler(s.GetCustomer))
		r.Patch("/{customer_id}", RestHandler(s.UpdateCustomer))
		r.Delete("/{customer_id}", RestHandler(s.DeleteCustomer))
	})
	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListCampaigns))
		r.Post("/", RestHandler(s.CreateCampaign))
		r.Get("/{campaign_id}", RestHandler(s.GetCampaign))
		r.Patch("/{campaign_id}", RestHandler(s.UpdateCampaign))
		r.Delete("/{campaign_id}", RestHandler(s.DeleteCampaign))
	})
	r.Route("/referrals", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListReferrals))
		r.Post("/", RestHandler(s.CreateReferral))
		r.Patch("/{referral_id}/status", RestHandler(s.UpdateReferralStatus))
	})
	r.Get("/rewards", RestHandler(s.ListRewards))
	r.Get("/activities", RestHandler(s.ListActivities))
}

func (s *CRMService) ListCustomers(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}

	var customers []database.Customer
	if err := s.db.WithContext(r.Context()).Where("user_id = ?", userId).Find(&customers).Error; err != nil {
		return nil, err
	}

	resp := make([]api.Customer, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, toCustomer(c))
	}
	return resp, nil
}

func (s *CRMService) GetCustomer(r *http.Request) (any, error) {
	customer, err := s.ownedCustomer(r, "customer_id")
	if err != nil {
		return nil, err
	}
	return toCustomer(customer), nil
}

func (s *CRMService) CreateCustomer(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.CreateCustomerRequest](r)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "customer name is required")
	}

	customer := database.Customer{
		UserId: userId,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Notes:  req.Notes,
	}
	if err := s.db.WithContext(r.Context()).Create(&customer).Error; err != nil {
		return nil, err
	}

	database.CreateActivity(r.Context(), s.db, userId, "customer_added", //nolint:errcheck
		fmt.Sprintf("Added new customer %s", customer.Name), nil)

	return toCustomer(customer), nil
}

func (s *CRMService) UpdateCustomer(r *http.Request) (any, error) {
	customer, err := s.ownedCustomer(r, "customer_id")
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.UpdateCustomerRequest](r)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(r.Context()).Model(&customer).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	database.CreateActivity(r.Context(), s.db, customer.UserId, "customer_updated", //nolint:errcheck
		fmt.Sprintf("Updated customer %s", customer.Name), nil)

	return toCustomer(customer), nil
}

func (s *CRMService) DeleteCustomer(r *http.Request) (any, error) {
	customer, err := s.ownedCustomer(r, "customer_id")
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(r.Context()).Delete(&customer).Error; err != nil {
		return nil, err
	}

	database.CreateActivity(r.Context(), s.db, customer.UserId, "customer_deleted", //nolint:errcheck
		fmt.Sprintf("Deleted customer %s", customer.Name), nil)

	return nil, nil
}

func (s *CRMService) ImportCustomers(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.ImportCustomersRequest](r)
	if err != nil {
		return nil, err
	}
	if len(req.Customers) == 0 {
		return nil, CodedErrorf(http.StatusBadRequest, "no customers to import")
	}

	customers := make([]database.Customer, 0, len(req.Customers))
	for _, c := range req.Customers {
		if c.Name == "" {
			return nil, CodedErrorf(http.StatusBadRequest, "customer name is required")
		}
		customers = append(customers, database.Customer{
			UserId: userId,
			Name:   c.Name,
			Email:  c.Email,
			Phone:  c.Phone,
			Notes:  c.Notes,
		})
	}
	if err := s.db.WithContext(r.Context()).Create(&customers).Error; err != nil {
		return nil, err
	}

	database.CreateActivity(r.Context(), s.db, userId, "customers_imported", //nolint:errcheck
		fmt.Sprintf("Imported %d customers", len(customers)), nil)

	resp := make([]api.Customer, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, toCustomer(c))
	}
	return resp, nil
}

func (s *CRMService) ListCampaigns(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}

	var campaigns []database.Campaign
	if err := s.db.WithContext(r.Context()).Where("user_id = ?", userId).Find(&campaigns).Error; err != nil {
		return nil, err
	}

	resp := make([]api.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		resp = append(resp, toCampaign(c))
	}
	return resp, nil
}

func (s *CRMService) GetCampaign(r *http.Request) (any, error) {
	campaign, err := s.ownedCampaign(r, "campaign_id")
	if err != nil {
		return nil, err
	}
	return toCampaign(campaign), nil
}

func (s *CRMService) CreateCampaign(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.CreateCampaignRequest](r)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "campaign name is required")
	}

	campaign := database.Campaign{
		UserId:       userId,
		Name:         req.Name,
		Description:  req.Description,
		RewardAmount: req.RewardAmount,
		Active:       true,
	}
	if err := s.db.WithContext(r.Context()).Create(&campaign).Error; err != nil {
		return nil, err
	}

	database.CreateActivity(r.Context(), s.db, userId, "campaign_created", //nolint:errcheck
		fmt.Sprintf("Created new campaign %q", campaign.Name), nil)

	return toCampaign(campaign), nil
}

func (s *CRMService) UpdateCampaign(r *http.Request) (any, error) {
	campaign, err := s.ownedCampaign(r, "campaign_id")
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.UpdateCampaignRequest](r)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.RewardAmount != nil {
		updates["reward_amount"] = *req.RewardAmount
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(r.Context()).Model(&campaign).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	database.CreateActivity(r.Context(), s.db, campaign.UserId, "campaign_updated", //nolint:errcheck
		fmt.Sprintf("Updated campaign %q", campaign.Name), nil)

	return toCampaign(campaign), nil
}

func (s *CRMService) DeleteCampaign(r *http.Request) (any, error) {
	campaign, err := s.ownedCampaign(r, "campaign_id")
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(r.Context()).Delete(&campaign).Error; err != nil {
		return nil, err
	}

	database.CreateActivity(r.Context(), s.db, campaign.UserId, "campaign_deleted", //nolint:errcheck
		fmt.Sprintf("Deleted campaign %q", campaign.Name), nil)

	return nil, nil
}

func (s *CRMService) ListReferrals(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}

	var referrals []database.Referral
	if err := s.db.WithContext(r.Context()).Where("user_id = ?", userId).Find(&referrals).Error; err != nil {
		return nil, err
	}

	resp := make([]api.Referral, 0, len(referrals))
	for _, ref := range referrals {
		resp = append(resp, toReferral(ref))
	}
	return resp, nil
}

func (s *CRMService) CreateReferral(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.CreateReferralRequest](r)
	if err != nil {
		return nil, err
	}

	var campaign database.Campaign
	if err := s.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", req.CampaignId, userId).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "campaign not found")
		}
		return nil, err
	}
	var customer database.Customer
	if err := s.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", req.CustomerId, userId).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "customer not found")
		}
		return nil, err
	}

	referral := database.Referral{
		UserId:        userId,
		CampaignId:    campaign.Id,
		CustomerId:    customer.Id,
		ReferredName:  req.ReferredName,
		ReferredEmail: req.ReferredEmail,
		Status:        database.ReferralPending,
		Code:          uuid.New(),
	}
	if err := s.db.WithContext(r.Context()).Create(&referral).Error; err != nil {
		return nil, err
	}

	database.CreateActivity(r.Context(), s.db, userId, "referral_created", //nolint:errcheck
		fmt.Sprintf("Created referral from %s for campaign %q", customer.Name, campaign.Name), nil)

	return toReferral(referral), nil
}

func (s *CRMService) UpdateReferralStatus(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	referralId, err := URLParamId(r, "referral_id")
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.UpdateReferralStatusRequest](r)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case database.ReferralPending, database.ReferralContacted, database.ReferralConverted, database.ReferralRewarded:
	default:
		return nil, CodedErrorf(http.StatusBadRequest, "invalid referral status %q", req.Status)
	}

	var referral database.Referral
	if err := s.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", referralId, userId).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "referral not found")
		}
		return nil, err
	}

	if err := s.db.WithContext(r.Context()).Model(&referral).Update("status", req.Status).Error; err != nil {
		return nil, err
	}

	database.CreateActivity(r.Context(), s.db, userId, "referral_updated", //nolint:errcheck
		fmt.Sprintf("Referral %d moved to %s", referral.Id, req.Status), nil)

	return toReferral(referral), nil
}

func (s *CRMService) ListRewards(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}

	var rewards []database.Reward
	if err := s.db.WithContext(r.Context()).Where("user_id = ?", userId).Find(&rewards).Error; err != nil {
		return nil, err
	}

	resp := make([]api.Reward, 0, len(rewards))
	for _, rw := range rewards {
		resp = append(resp, api.Reward{
			Id:         rw.Id,
			ReferralId: rw.ReferralId,
			Amount:     rw.Amount,
			Status:     rw.Status,
			CreatedAt:  rw.CreatedAt,
		})
	}
	return resp, nil
}

func (s *CRMService) ListActivities(r *http.Request) (any, error) {
	userId, err := requestUser(r)
	if err != nil {
		return nil, err
	}
	query, err := ParseRequestQueryParams[api.ActivityQuery](r)
	if err != nil {
		return nil, err
	}

	activities, err := database.GetActivities(r.Context(), s.db, userId, query.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]api.Activity, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, api.Activity{
			Id:          a.Id,
			Type:        a.Type,
			Description: a.Description,
			CreatedAt:   a.CreatedAt,
		})
	}
	return resp, nil
}

func (s *CRMService) ownedCustomer(r *http.Request, param string) (database.Customer, error) {
	userId, err := requestUser(r)
	if err != nil {
		return database.Customer{}, err
	}
	id, err := URLParamId(r, param)
	if err != nil {
		return database.Customer{}, err
	}

	var customer database.Customer
	err = s.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", id, userId).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Customer{}, CodedErrorf(http.StatusNotFound, "customer not found")
	}
	if err != nil {
		return database.Customer{}, err
	}
	return customer, nil
}

func (s *CRMService) ownedCampaign(r *http.Request, param string) (database.Campaign, error) {
	userId, err := requestUser(r)
	if err != nil {
		return database.Campaign{}, err
	}
	id, err := URLParamId(r, param)
	if err != nil {
		return database.Campaign{}, err
	}

	var campaign database.Campaign
	err = s.db.WithContext(r.Context()).Where("id = ? AND user_id = ?", id, userId).First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Campaign{}, CodedErrorf(http.StatusNotFound, "campaign not found")
	}
	if err != nil {
		return database.Campaign{}, err
	}
	return campaign, nil
}

func toCustomer(c database.Customer) api.Customer {
	return api.Customer{Id: c.Id, Name: c.Name, Email: c.Email, Phone: c.Phone, Notes: c.Notes, CreatedAt: c.CreatedAt}
}

func toCampaign(c database.Campaign) api.Campaign {
	return api.Campaign{Id: c.Id, Name: c.Name, Description: c.Description, RewardAmount: c.RewardAmount, Active: c.Active, CreatedAt: c.CreatedAt}
}

func toReferral(ref database.Referral) api.Referral {
	return api.Referral{
		Id:            ref.Id,
		CampaignId:    ref.CampaignId,
		CustomerId:    ref.CustomerId,
		ReferredName:  ref.ReferredName,
		ReferredEmail: ref.ReferredEmail,
		Status:        ref.Status,
		Code:          ref.Code,
		CreatedAt:     ref.CreatedAt,
	}
}
