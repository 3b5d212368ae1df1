package models

type User struct {
	UserID        int    `json:"user_id" gorm:"primaryKey;autoIncrement;type:INT"`
	Name          string `json:"name" gorm:"type:varchar(50);not null"`
	Email         string `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone         string `json:"phone" gorm:"type:varchar(20);uniqueIndex;not null"`
	Password      string `json:"password" gorm:"type:varchar(100);not null"`
	Role          string `json:"role" gorm:"type:enum('user', 'admin');default:'user';not null"`
	IsActive      bool   `json:"is_active" gorm:"type:tinyint(1);default:1"`
	PaymentMethod string `json:"payment_method" gorm:"type:enum('credit_card', 'e_wallet');not null"`
	PaymentInfo   string `json:"payment_info" gorm:"type:varchar(255)"`
	LicensePlate  string `json:"license_plate" gorm:"type:varchar(20)"`
	Rentals       []Rental `json:"-" gorm:"foreignKey:user_id;references:UserID"`
	Reviews       []Review `json:"-" gorm:"foreignKey:user_id;references:UserID"`
}

type SimpleUserResponse struct {
	UserID        int    `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	IsActive      bool   `json:"is_active"`
	PaymentMethod string `json:"payment_method"`
	LicensePlate  string `json:"license_plate"`
}

type UserResponse struct {
	UserID        int                    `json:"user_id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email"`
	Phone         string                 `json:"phone"`
	Role          string                 `json:"role"`
	IsActive      bool                   `json:"is_active"`
	PaymentMethod string                 `json:"payment_method"`
	LicensePlate  string                 `json:"license_plate"`
	Rentals       []SimpleRentalResponse `json:"rentals"`
	Reviews       []ReviewResponse       `json:"reviews"`
}

func (u *User) ToSimpleResponse() SimpleUserResponse {
	return SimpleUserResponse{
		UserID:        u.UserID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		IsActive:      u.IsActive,
		PaymentMethod: u.PaymentMethod,
		LicensePlate:  u.LicensePlate,
	}
}

func (u *User) ToResponse() UserResponse {
	rentals := make([]SimpleRentalResponse, len(u.Rentals))
	for i, rental := range u.Rentals {
		rentals[i] = rental.ToSimpleResponse()
	}

	reviews := make([]ReviewResponse, len(u.Reviews))
	for i, review := range u.Reviews {
		reviews[i] = review.ToResponse()
	}

	return UserResponse{
		UserID:        u.UserID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		IsActive:      u.IsActive,
		PaymentMethod: u.PaymentMethod,
		LicensePlate:  u.LicensePlate,
		Rentals:       rentals,
		Reviews:       reviews,
	}
}
