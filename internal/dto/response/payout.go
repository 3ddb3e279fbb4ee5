package response

import (
	"studio-booking/internal/data/entity"
)

type OnboardingResponse struct {
	OnboardingURL string `json:"onboarding_url"`
}

type PayoutAccountResponse struct {
	InstructorID      string                     `json:"instructor_id"`
	ExternalAccountID *string                    `json:"external_account_id,omitempty"`
	Status            entity.PayoutAccountStatus `json:"status"`
	CommissionRate    float64                    `json:"commission_rate"`
}

func PayoutAccountToResponse(account *entity.PayoutAccount) PayoutAccountResponse {
	return PayoutAccountResponse{
		InstructorID:      account.InstructorID.String(),
		ExternalAccountID: account.ExternalAccountID,
		Status:            account.Status,
		CommissionRate:    account.CommissionRate,
	}
}
