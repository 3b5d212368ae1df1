// models/vehicle.go
package models

import "gorm.io/gorm"

type Vehicle struct {
	VehicleID          int            `json:"vehicle_id" gorm:"primaryKey;autoIncrement;type:INT"`
	Make               string         `json:"make" gorm:"type:varchar(50);not null"`
	Model              string         `json:"model" gorm:"type:varchar(50);not null"`
	Year               int            `json:"year" gorm:"type:INT;not null"`
	Category           string         `json:"category" gorm:"type:enum('economy', 'sedan', 'suv', 'van', 'luxury');not null"` // 車輛類別
	DailyRate          float64        `json:"daily_rate" gorm:"type:decimal(10,2);not null"`                                  // 每日租金
	IsAvailable        bool           `json:"is_available" gorm:"type:tinyint(1);default:1"`                                  // 管理員上下架開關，實際可租性以日期區間查詢為準
	Location           string         `json:"location" gorm:"type:varchar(50);not null"`
	RegistrationNumber string         `json:"registration_number" gorm:"type:varchar(20);uniqueIndex;not null"` // 車牌號碼
	ImageURL           string         `json:"image_url" gorm:"type:varchar(255)"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
	Rentals            []Rental       `json:"-" gorm:"foreignKey:vehicle_id;references:VehicleID"`
	Reviews            []Review       `json:"-" gorm:"foreignKey:vehicle_id;references:VehicleID"`
}

type VehicleResponse struct {
	VehicleID          int     `json:"vehicle_id"`
	Make               string  `json:"make"`
	Model              string  `json:"model"`
	Year               int     `json:"year"`
	Category           string  `json:"category"`
	DailyRate          float64 `json:"daily_rate"`
	IsAvailable        bool    `json:"is_available"`
	Location           string  `json:"location"`
	RegistrationNumber string  `json:"registration_number"`
	ImageURL           string  `json:"image_url"`
}

func (v *Vehicle) ToResponse() VehicleResponse {
	return VehicleResponse{
		VehicleID:          v.VehicleID,
		Make:               v.Make,
		Model:              v.Model,
		Year:               v.Year,
		Category:           v.Category,
		DailyRate:          v.DailyRate,
		IsAvailable:        v.IsAvailable,
		Location:           v.Location,
		RegistrationNumber: v.RegistrationNumber,
		ImageURL:           v.ImageURL,
	}
}
