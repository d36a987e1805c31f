package recurring

import "time"

type SetupPlanRequest struct {
	TenantName      string    `json:"tenant_name" validate:"required,max=120"`
	Property        string    `json:"property" validate:"required,max=120"`
	Unit            string    `json:"unit" validate:"max=40"`
	Amount          string    `json:"amount" validate:"required"`
	Frequency       string    `json:"frequency" validate:"required,oneof=weekly biweekly monthly quarterly"`
	PaymentMethodID string    `json:"payment_method_id" validate:"required"`
	FirstChargeDate time.Time `json:"first_charge_date" validate:"required"`
	Actor           string    `json:"actor" validate:"required"`
	ActorRole       string    `json:"actor_role"`
}

type AddMethodRequest struct {
	Type      string `json:"type" validate:"required,oneof=card ach"`
	Last4     string `json:"last4" validate:"required,len=4,numeric"`
	IsDefault bool   `json:"is_default"`
	Actor     string `json:"actor" validate:"required"`
	ActorRole string `json:"actor_role"`
}

type PlanActionRequest struct {
	Actor     string `json:"actor" validate:"required"`
	ActorRole string `json:"actor_role"`
}

type SweepResponse struct {
	Success   bool        `json:"success"`
	Ran       int         `json:"ran"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []RunResult `json:"results"`
}
