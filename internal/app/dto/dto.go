package dto

import "time"

// ============ Общие структуры ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ============ Каталог сборов (Service Fees) ============

type FeeResponse struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	CalculationKind string  `json:"calculation_kind"` // fixed, percentage
	Value           float64 `json:"value"`
}

type FeeListResponse struct {
	Fees  []FeeResponse `json:"fees"`
	Total int           `json:"total"`
}

type CreateFeeRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	CalculationKind string  `json:"calculation_kind" binding:"required,oneof=fixed percentage"`
	Value           float64 `json:"value" binding:"required,gte=0"`
}

type UpdateFeeRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	CalculationKind string  `json:"calculation_kind" binding:"omitempty,oneof=fixed percentage"`
	Value           float64 `json:"value" binding:"omitempty,gte=0"`
}

// ============ Контракты (Contracts) ============

type PartyInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type CreateContractRequest struct {
	BasePrice          int64     `json:"base_price" binding:"required,gt=0"`
	VehicleTitle       string    `json:"vehicle_title" binding:"required"`
	VehicleDescription string    `json:"vehicle_description"`
	Buyer              PartyInfo `json:"buyer" binding:"required"`
	Seller             PartyInfo `json:"seller" binding:"required"`
}

type ContractResponse struct {
	ID                 uint       `json:"id"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	Creator            string     `json:"creator"` // Логин создателя
	BasePrice          int64      `json:"base_price"`
	VehicleTitle       string     `json:"vehicle_title"`
	VehicleDescription string     `json:"vehicle_description,omitempty"`
	Buyer              PartyInfo  `json:"buyer"`
	Seller             PartyInfo  `json:"seller"`

	// Только для GET одного контракта
	BuyerAllocations  []AllocationResponse `json:"buyer_allocations,omitempty"`
	SellerAllocations []AllocationResponse `json:"seller_allocations,omitempty"`
	Settlement        *SettlementSummary   `json:"settlement,omitempty"`
	SettlementRecord  *SettlementRecord    `json:"settlement_record,omitempty"`
}

type ContractListResponse struct {
	Contracts []ContractResponse `json:"contracts"`
	Total     int                `json:"total"`
}

type AllocationResponse struct {
	ServiceFeeID uint   `json:"service_fee_id"`
	FeeName      string `json:"fee_name,omitempty"`
	Amount       int64  `json:"amount"`
}

// Живой пересчёт итогов (предпросмотр до завершения контракта)
type SettlementSummary struct {
	BasePrice         int64 `json:"base_price"`
	BuyerFeeTotal     int64 `json:"buyer_fee_total"`
	SellerFeeTotal    int64 `json:"seller_fee_total"`
	FinalBuyerAmount  int64 `json:"final_buyer_amount"`
	FinalSellerAmount int64 `json:"final_seller_amount"`
	HasAnomaly        bool  `json:"has_anomaly"`
}

// Сохранённый снимок расчёта завершённого контракта
type SettlementRecord struct {
	BuyerFeeTotal     int64     `json:"buyer_fee_total"`
	SellerFeeTotal    int64     `json:"seller_fee_total"`
	FinalBuyerAmount  int64     `json:"final_buyer_amount"`
	FinalSellerAmount int64     `json:"final_seller_amount"`
	HasAnomaly        bool      `json:"has_anomaly"`
	ArchiveURL        string    `json:"archive_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type SetAllocationsRequest struct {
	PartyRole string `json:"party_role" binding:"required,oneof=buyer seller"`
	FeeIDs    []uint `json:"fee_ids"`
}

type SendLinkRequest struct {
	PartyRole string `json:"party_role" binding:"required,oneof=buyer seller"`
	Channel   string `json:"channel" binding:"required,oneof=email sms"`
}

type SendLinkResponse struct {
	Link string `json:"link"`
}

type LinkDispatchResponse struct {
	PartyRole   string    `json:"party_role"`
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	RequestedAt time.Time `json:"requested_at"`
}

type LinkDispatchListResponse struct {
	Dispatches []LinkDispatchResponse `json:"dispatches"`
	Total      int                    `json:"total"`
}

// ============ Экран выбора стороны (по токену) ============

type SelectionViewResponse struct {
	ContractID         uint          `json:"contract_id"`
	PartyRole          string        `json:"party_role"`
	PartyName          string        `json:"party_name"`
	VehicleTitle       string        `json:"vehicle_title"`
	VehicleDescription string        `json:"vehicle_description,omitempty"`
	BasePrice          int64         `json:"base_price"`
	SelectedFeeIDs     []uint        `json:"selected_fee_ids"`
	Fees               []FeeResponse `json:"fees"` // каталог для отображения чекбоксов
}

type SubmitSelectionRequest struct {
	Token  string `json:"token" binding:"required"`
	FeeIDs []uint `json:"fee_ids"`
}

// ============ Пользователи (Users) ============

type UserResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Role     int    `json:"role"`
}

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Role     int    `json:"role"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}
