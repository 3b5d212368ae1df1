package models

import "time"

// 租賃狀態：pending -> confirmed -> active -> completed，pending/confirmed 可轉 cancelled
const (
	RentalStatusPending   = "pending"
	RentalStatusConfirmed = "confirmed"
	RentalStatusActive    = "active"
	RentalStatusCompleted = "completed"
	RentalStatusCancelled = "cancelled"
)

// 付款狀態
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

type Rental struct {
	RentalID       int       `json:"rental_id" gorm:"primaryKey;autoIncrement;type:INT"`
	UserID         int       `json:"user_id" gorm:"index;not null;type:INT"`
	VehicleID      int       `json:"vehicle_id" gorm:"index;not null;type:INT"`
	StartDate      time.Time `json:"start_date" gorm:"type:date;not null"` // 起租日
	EndDate        time.Time `json:"end_date" gorm:"type:date;not null"`   // 結束日（不含當天）
	PickupLocation string    `json:"pickup_location" gorm:"type:varchar(50)"`
	Days           int       `json:"days" gorm:"type:INT;not null"`
	DailyRate      float64   `json:"daily_rate" gorm:"type:decimal(10,2);not null"` // 下訂當下的日租金快照
	Subtotal       float64   `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Discount       float64   `json:"discount" gorm:"type:decimal(10,2);default:0.0"`
	Tax            float64   `json:"tax" gorm:"type:decimal(10,2);not null"`
	TotalCost      float64   `json:"total_cost" gorm:"type:decimal(10,2);not null"`
	Status         string    `json:"status" gorm:"type:enum('pending', 'confirmed', 'active', 'completed', 'cancelled');default:'pending';not null"`
	PaymentStatus  string    `json:"payment_status" gorm:"type:enum('pending', 'paid', 'refunded');default:'pending';not null"`
	CancelReason   string    `json:"cancel_reason" gorm:"type:varchar(255)"`
	CreatedAt      time.Time `json:"created_at"`
	User           User      `json:"-" gorm:"foreignKey:user_id;references:UserID"`
	Vehicle        Vehicle   `json:"-" gorm:"foreignKey:vehicle_id;references:VehicleID"`
	Payments       []Payment `json:"-" gorm:"foreignKey:rental_id;references:RentalID"`
}

type SimpleRentalResponse struct {
	RentalID       int       `json:"rental_id"`
	UserID         int       `json:"user_id"`
	VehicleID      int       `json:"vehicle_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	PickupLocation string    `json:"pickup_location"`
	Days           int       `json:"days"`
	TotalCost      float64   `json:"total_cost"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
}

type RentalResponse struct {
	RentalID       int                `json:"rental_id"`
	UserID         int                `json:"user_id"`
	VehicleID      int                `json:"vehicle_id"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	PickupLocation string             `json:"pickup_location"`
	Days           int                `json:"days"`
	DailyRate      float64            `json:"daily_rate"`
	Subtotal       float64            `json:"subtotal"`
	Discount       float64            `json:"discount"`
	Tax            float64            `json:"tax"`
	TotalCost      float64            `json:"total_cost"`
	Status         string             `json:"status"`
	PaymentStatus  string             `json:"payment_status"`
	CancelReason   string             `json:"cancel_reason,omitempty"`
	User           SimpleUserResponse `json:"user"`
	Vehicle        VehicleResponse    `json:"vehicle"`
	Payments       []PaymentResponse  `json:"payments"`
}

func (r *Rental) ToSimpleResponse() SimpleRentalResponse {
	return SimpleRentalResponse{
		RentalID:       r.RentalID,
		UserID:         r.UserID,
		VehicleID:      r.VehicleID,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		PickupLocation: r.PickupLocation,
		Days:           r.Days,
		TotalCost:      r.TotalCost,
		Status:         r.Status,
		PaymentStatus:  r.PaymentStatus,
	}
}

func (r *Rental) ToResponse() RentalResponse {
	payments := make([]PaymentResponse, len(r.Payments))
	for i, payment := range r.Payments {
		payments[i] = payment.ToResponse()
	}

	return RentalResponse{
		RentalID:       r.RentalID,
		UserID:         r.UserID,
		VehicleID:      r.VehicleID,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		PickupLocation: r.PickupLocation,
		Days:           r.Days,
		DailyRate:      r.DailyRate,
		Subtotal:       r.Subtotal,
		Discount:       r.Discount,
		Tax:            r.Tax,
		TotalCost:      r.TotalCost,
		Status:         r.Status,
		PaymentStatus:  r.PaymentStatus,
		CancelReason:   r.CancelReason,
		User:           r.User.ToSimpleResponse(),
		Vehicle:        r.Vehicle.ToResponse(),
		Payments:       payments,
	}
}
