package models

import "time"

type Review struct {
	ReviewID  int       `json:"review_id" gorm:"primaryKey;autoIncrement;type:INT"`
	UserID    int       `json:"user_id" gorm:"index;not null;type:INT"`
	VehicleID int       `json:"vehicle_id" gorm:"index;not null;type:INT"`
	RentalID  *int      `json:"rental_id" gorm:"uniqueIndex;type:INT;default:null"` // 一筆租賃最多一則評論
	Rating    int       `json:"rating" gorm:"type:INT;not null"`
	Comment   string    `json:"comment" gorm:"type:varchar(500)"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `json:"-" gorm:"foreignKey:user_id;references:UserID"`
	Vehicle   Vehicle   `json:"-" gorm:"foreignKey:vehicle_id;references:VehicleID"`
}

type ReviewResponse struct {
	ReviewID  int       `json:"review_id"`
	UserID    int       `json:"user_id"`
	VehicleID int       `json:"vehicle_id"`
	RentalID  *int      `json:"rental_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) ToResponse() ReviewResponse {
	return ReviewResponse{
		ReviewID:  r.ReviewID,
		UserID:    r.UserID,
		VehicleID: r.VehicleID,
		RentalID:  r.RentalID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
