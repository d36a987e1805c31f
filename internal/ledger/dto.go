package ledger

import "time"

type CreateAccountRequest struct {
	Name          string `json:"name" validate:"required,max=120"`
	Type          string `json:"type" validate:"required,oneof=Asset Liability Equity Revenue Expense"`
	NormalBalance string `json:"normal_balance" validate:"omitempty,oneof=Debit Credit"`
	ParentID      *int64 `json:"parent_id,omitempty"`
	Actor         string `json:"actor" validate:"required"`
	ActorRole     string `json:"actor_role"`
}

type UpdateAccountRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Status    *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	ParentID  *int64  `json:"parent_id,omitempty"`
	Actor     string  `json:"actor" validate:"required"`
	ActorRole string  `json:"actor_role"`
}

type PostJournalRequest struct {
	Date      *time.Time           `json:"date,omitempty"`
	Property  string               `json:"property,omitempty"`
	Lines     []PostJournalLineReq `json:"lines" validate:"required,min=2,dive"`
	Actor     string               `json:"actor" validate:"required"`
	ActorRole string               `json:"actor_role"`
}

type PostJournalLineReq struct {
	AccountID   int64  `json:"account_id" validate:"required,gt=0"`
	Debit       string `json:"debit" validate:"omitempty"`
	Credit      string `json:"credit" validate:"omitempty"`
	Description string `json:"description" validate:"max=240"`
}

type PostJournalResponse struct {
	Success bool          `json:"success"`
	Ref     string        `json:"ref,omitempty"`
	Lines   []Transaction `json:"lines,omitempty"`
	Error   string        `json:"error,omitempty"`
}
