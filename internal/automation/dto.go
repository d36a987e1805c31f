package automation

type CreateAutomationRequest struct {
	Name              string           `json:"name" validate:"required,max=120"`
	TriggerType       string           `json:"trigger_type" validate:"required,max=60"`
	TriggerEvent      string           `json:"trigger_event" validate:"max=60"`
	AllowMultipleRuns bool             `json:"allow_multiple_runs"`
	CooldownHours     int              `json:"cooldown_hours" validate:"gte=0,lte=8760"`
	Steps             []CreateStepReq  `json:"steps" validate:"required,min=1,dive"`
}

type CreateStepReq struct {
	Name string `json:"name" validate:"required,max=120"`
	Kind string `json:"kind" validate:"required,oneof=email sms task"`
}

type EnrollRequest struct {
	LeadID string `json:"lead_id" validate:"required,max=80"`
}

type UnenrollRequest struct {
	Reason string `json:"reason" validate:"max=240"`
}

type RetryStepRequest struct {
	StepID string `json:"step_id" validate:"required"`
}
