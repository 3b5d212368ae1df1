package models

import "time"

// 單筆付款狀態
const (
	PaymentRowStatusPending    = "pending"
	PaymentRowStatusSuccessful = "successful"
	PaymentRowStatusFailed     = "failed"
	PaymentRowStatusRefunded   = "refunded"
)

type Payment struct {
	PaymentID     int       `json:"payment_id" gorm:"primaryKey;autoIncrement;type:INT"`
	RentalID      int       `json:"rental_id" gorm:"index;not null;type:INT"`
	Amount        float64   `json:"amount" gorm:"type:decimal(10,2);not null"` // 退款列為負數金額
	Method        string    `json:"method" gorm:"type:enum('credit_card', 'e_wallet');not null"`
	Status        string    `json:"status" gorm:"type:enum('pending', 'successful', 'failed', 'refunded');default:'pending';not null"`
	TransactionID string    `json:"transaction_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	RefundOf      *int      `json:"refund_of" gorm:"type:INT;default:null"` // 指向被退款的原始付款
	CreatedAt     time.Time `json:"created_at"`
	Rental        Rental    `json:"-" gorm:"foreignKey:rental_id;references:RentalID"`
}

type PaymentResponse struct {
	PaymentID     int       `json:"payment_id"`
	RentalID      int       `json:"rental_id"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	RefundOf      *int      `json:"refund_of,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Payment) ToResponse() PaymentResponse {
	return PaymentResponse{
		PaymentID:     p.PaymentID,
		RentalID:      p.RentalID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		RefundOf:      p.RefundOf,
		CreatedAt:     p.CreatedAt,
	}
}
