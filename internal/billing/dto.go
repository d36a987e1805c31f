package billing

import "time"

type CreateInvoiceRequest struct {
	ID        string    `json:"id,omitempty"`
	Tenant    string    `json:"tenant" validate:"required,max=120"`
	Property  string    `json:"property" validate:"required,max=120"`
	Total     string    `json:"total" validate:"required"`
	DueDate   time.Time `json:"due_date" validate:"required"`
	Actor     string    `json:"actor" validate:"required"`
	ActorRole string    `json:"actor_role"`
}

type ApplyPaymentRequest struct {
	Amount    string `json:"amount" validate:"required"`
	Method    string `json:"method" validate:"required,oneof=ACH Card Check Wire Cash"`
	Actor     string `json:"actor" validate:"required"`
	ActorRole string `json:"actor_role"`
}

type CreateBillRequest struct {
	ID        string `json:"id,omitempty"`
	Vendor    string `json:"vendor" validate:"required,max=120"`
	Property  string `json:"property" validate:"required,max=120"`
	Category  string `json:"category" validate:"max=60"`
	Total     string `json:"total" validate:"required"`
	Is1099    bool   `json:"is_1099"`
	Actor     string `json:"actor" validate:"required"`
	ActorRole string `json:"actor_role"`
}

type PayBillRequest struct {
	Method    string `json:"method" validate:"required,oneof=ACH Card Check Wire Cash"`
	Actor     string `json:"actor" validate:"required"`
	ActorRole string `json:"actor_role"`
}

type CreateDepositRequest struct {
	ID         string    `json:"id,omitempty"`
	Tenant     string    `json:"tenant" validate:"required,max=120"`
	Property   string    `json:"property" validate:"required,max=120"`
	Unit       string    `json:"unit" validate:"max=40"`
	Amount     string    `json:"amount" validate:"required"`
	MoveInDate time.Time `json:"move_in_date"`
	Actor      string    `json:"actor" validate:"required"`
	ActorRole  string    `json:"actor_role"`
}

type ReleaseDepositRequest struct {
	Deductions []string `json:"deductions" validate:"dive,required"`
	Actor      string   `json:"actor" validate:"required"`
	ActorRole  string   `json:"actor_role"`
}

type CreateStatementRequest struct {
	ID            string `json:"id,omitempty"`
	Owner         string `json:"owner" validate:"required,max=120"`
	Property      string `json:"property" validate:"required,max=120"`
	Period        string `json:"period" validate:"required,max=20"`
	GrossIncome   string `json:"gross_income" validate:"required"`
	Expenses      string `json:"expenses" validate:"required"`
	ManagementFee string `json:"management_fee" validate:"required"`
	Actor         string `json:"actor" validate:"required"`
	ActorRole     string `json:"actor_role"`
}

type ActorRequest struct {
	Actor     string `json:"actor" validate:"required"`
	ActorRole string `json:"actor_role"`
}
