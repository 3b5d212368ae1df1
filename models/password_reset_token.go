package models

import "time"

type PasswordResetToken struct {
	TokenID   int       `json:"token_id" gorm:"primaryKey;autoIncrement;type:INT"`
	UserID    int       `json:"user_id" gorm:"index;not null;type:INT"`
	Token     string    `json:"token" gorm:"type:varchar(36);uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"type:datetime;not null"`
	Used      bool      `json:"used" gorm:"type:tinyint(1);default:0"`
	User      User      `json:"-" gorm:"foreignKey:user_id;references:UserID"`
}
