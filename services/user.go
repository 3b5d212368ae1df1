package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"autohive/database"
	"autohive/models"
	"autohive/utils"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

// isDuplicateKey MySQL 1062 重複鍵
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// RegisterUser 註冊會員
func RegisterUser(user *models.User) error {
	// 檢查是否有重複的 email 或 phone
	var existingUser models.User
	if err := database.DB.Where("email = ?", user.Email).First(&existingUser).Error; err == nil {
		return fmt.Errorf("%w: email %s is already in use", ErrConflict, user.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check for duplicate email: %v", err)
		return fmt.Errorf("failed to check for duplicate email: %w", err)
	}

	if err := database.DB.Where("phone = ?", user.Phone).First(&existingUser).Error; err == nil {
		return fmt.Errorf("%w: phone %s is already in use", ErrConflict, user.Phone)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check for duplicate phone: %v", err)
		return fmt.Errorf("failed to check for duplicate phone: %w", err)
	}

	if user.PaymentMethod != "credit_card" && user.PaymentMethod != "e_wallet" {
		return fmt.Errorf("%w: payment_method must be 'credit_card' or 'e_wallet'", ErrValidation)
	}

	user.Role = "user"
	user.IsActive = true

	// 哈希密碼
	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashedPassword

	// 加密 payment_info
	if user.PaymentInfo != "" {
		encryptedPaymentInfo, err := utils.EncryptPaymentInfo(user.PaymentInfo)
		if err != nil {
			log.Printf("Failed to encrypt payment_info: %v", err)
			return fmt.Errorf("failed to encrypt payment_info: %w", err)
		}
		user.PaymentInfo = encryptedPaymentInfo
	}

	if err := database.DB.Create(user).Error; err != nil {
		// 併發註冊下唯一索引仍可能攔到重複
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: email or phone is already in use", ErrConflict)
		}
		log.Printf("Failed to register user: %v", err)
		return fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("Successfully registered user with ID %d", user.UserID)
	return nil
}

// LoginUser 登入會員。帳號不存在與密碼錯誤回傳同一錯誤，避免洩漏帳號是否存在
func LoginUser(email, password string) (*models.User, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("User with email %s not found", email)
			return nil, fmt.Errorf("%w: invalid email or password", ErrForbidden)
		}
		log.Printf("Failed to login user: %v", err)
		return nil, fmt.Errorf("failed to login user: %w", err)
	}

	if !user.IsActive {
		log.Printf("Inactive user %d attempted to login", user.UserID)
		return nil, fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		log.Printf("Invalid password for email %s", email)
		return nil, fmt.Errorf("%w: invalid email or password", ErrForbidden)
	}

	log.Printf("User with ID %d logged in successfully", user.UserID)
	return &user, nil
}

// GetUserByID 根據 ID 查詢會員
func GetUserByID(id int) (*models.User, error) {
	var user models.User
	if err := database.DB.
		Preload("Rentals").
		Preload("Reviews").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d not found", ErrNotFound, id)
		}
		log.Printf("Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}

	// 解密 payment_info
	if user.PaymentInfo != "" {
		decryptedPaymentInfo, err := utils.DecryptPaymentInfo(user.PaymentInfo)
		if err != nil {
			log.Printf("Failed to decrypt payment_info for user %d: %v", id, err)
			user.PaymentInfo = ""
		} else {
			user.PaymentInfo = decryptedPaymentInfo
		}
	}

	return &user, nil
}

// GetAllUsers 查詢所有會員（管理員）
func GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := database.DB.
		Preload("Rentals").
		Preload("Reviews").
		Find(&users).Error; err != nil {
		log.Printf("Failed to query all users: %v", err)
		return nil, fmt.Errorf("failed to query all users: %w", err)
	}

	log.Printf("Successfully retrieved %d users", len(users))
	return users, nil
}

// UpdateUser 更新會員資料，逐欄位檢查
func UpdateUser(id int, updatedFields map[string]interface{}) error {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d not found", ErrNotFound, id)
		}
		return fmt.Errorf("failed to find user with ID %d: %w", id, err)
	}

	// 映射 JSON 字段名到資料庫列名
	mappedFields := make(map[string]interface{})
	for key, value := range updatedFields {
		switch key {
		case "user_id", "role", "is_active":
			// 主鍵與權限欄位不允許透過個人資料更新
			return fmt.Errorf("%w: cannot update %s", ErrValidation, key)
		case "name":
			mappedFields["name"] = value
		case "phone":
			phoneStr, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: invalid phone type: must be a string", ErrValidation)
			}
			var existingUser models.User
			if err := database.DB.Where("phone = ? AND user_id != ?", phoneStr, id).First(&existingUser).Error; err == nil {
				return fmt.Errorf("%w: phone %s is already in use", ErrConflict, phoneStr)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check for duplicate phone: %w", err)
			}
			mappedFields["phone"] = phoneStr
		case "email":
			emailStr, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: invalid email type: must be a string", ErrValidation)
			}
			var existingUser models.User
			if err := database.DB.Where("email = ? AND user_id != ?", emailStr, id).First(&existingUser).Error; err == nil {
				return fmt.Errorf("%w: email %s is already in use", ErrConflict, emailStr)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check for duplicate email: %w", err)
			}
			mappedFields["email"] = emailStr
		case "payment_method":
			paymentMethodStr, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: invalid payment_method type: must be a string", ErrValidation)
			}
			if paymentMethodStr != "credit_card" && paymentMethodStr != "e_wallet" {
				return fmt.Errorf("%w: payment_method must be 'credit_card' or 'e_wallet'", ErrValidation)
			}
			mappedFields["payment_method"] = paymentMethodStr
		case "payment_info":
			paymentInfoStr, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: invalid payment_info type: must be a string", ErrValidation)
			}
			encryptedPaymentInfo, err := utils.EncryptPaymentInfo(paymentInfoStr)
			if err != nil {
				return fmt.Errorf("failed to encrypt payment_info: %w", err)
			}
			mappedFields["payment_info"] = encryptedPaymentInfo
		case "license_plate":
			mappedFields["license_plate"] = value
		default:
			return fmt.Errorf("%w: invalid field: %s", ErrValidation, key)
		}
	}

	if err := database.DB.Model(&user).Updates(mappedFields).Error; err != nil {
		log.Printf("Failed to update user with fields %v: %v", mappedFields, err)
		return fmt.Errorf("failed to update user with ID %d: %w", id, err)
	}

	log.Printf("Successfully updated user with ID %d", id)
	return nil
}

// ChangePassword 變更密碼，需先驗證舊密碼
func ChangePassword(id int, oldPassword, newPassword string) error {
	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d not found", ErrNotFound, id)
		}
		return fmt.Errorf("failed to find user with ID %d: %w", id, err)
	}

	if !utils.CheckPasswordHash(oldPassword, user.Password) {
		return fmt.Errorf("%w: old password is incorrect", ErrForbidden)
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := database.DB.Model(&user).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to update password for user %d: %w", id, err)
	}

	log.Printf("Password changed for user %d", id)
	return nil
}

// CreatePasswordResetToken 簽發密碼重設 token，一小時有效。
// 查無此信箱時回傳空字串而非錯誤，避免洩漏帳號是否存在
func CreatePasswordResetToken(email string) (string, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Password reset requested for unknown email %s", email)
			return "", nil
		}
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}

	token := models.PasswordResetToken{
		UserID:    user.UserID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
	}
	if err := database.DB.Create(&token).Error; err != nil {
		return "", fmt.Errorf("failed to create password reset token: %w", err)
	}

	log.Printf("Password reset token issued for user %d", user.UserID)
	return token.Token, nil
}

// ResetPassword 以 token 重設密碼，token 用後即廢
func ResetPassword(tokenStr, newPassword string) error {
	var token models.PasswordResetToken
	if err := database.DB.Where("token = ? AND used = ?", tokenStr, false).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: invalid or used reset token", ErrValidation)
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	if time.Now().UTC().After(token.ExpiresAt) {
		return fmt.Errorf("%w: reset token has expired", ErrValidation)
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	tx := database.DB.Begin()
	if err := tx.Model(&models.User{}).Where("user_id = ?", token.UserID).
		Update("password", hashedPassword).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to reset password for user %d: %w", token.UserID, err)
	}
	if err := tx.Model(&token).Update("used", true).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to mark reset token as used: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit password reset: %w", err)
	}

	log.Printf("Password reset completed for user %d", token.UserID)
	return nil
}

// PurgeExpiredResetTokens 清除過期的重設 token（定時任務）
func PurgeExpiredResetTokens() error {
	result := database.DB.Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to purge expired reset tokens: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Purged %d expired reset tokens", result.RowsAffected)
	}
	return nil
}

// SetUserActive 啟用/停用會員（管理員）
func SetUserActive(id int, active bool) error {
	result := database.DB.Model(&models.User{}).Where("user_id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %d active flag: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d not found", ErrNotFound, id)
	}
	log.Printf("User %d active flag set to %v", id, active)
	return nil
}

// DeleteUser 刪除會員與其關聯資料
func DeleteUser(id int) error {
	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Panic occurred during user deletion: %v", r)
		}
	}()

	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d not found", ErrNotFound, id)
		}
		return fmt.Errorf("failed to find user with ID %d: %w", id, err)
	}

	// 刪除相關的 reviews
	if err := tx.Where("user_id = ?", id).Delete(&models.Review{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete reviews for user %d: %w", id, err)
	}

	// 刪除租賃的付款列後再刪租賃
	var rentalIDs []int
	if err := tx.Model(&models.Rental{}).Where("user_id = ?", id).
		Pluck("rental_id", &rentalIDs).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to find rentals for user %d: %w", id, err)
	}
	if len(rentalIDs) > 0 {
		if err := tx.Where("rental_id IN ?", rentalIDs).Delete(&models.Payment{}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete payments for user %d: %w", id, err)
		}
	}
	if err := tx.Where("user_id = ?", id).Delete(&models.Rental{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete rentals for user %d: %w", id, err)
	}

	// 刪除重設 token
	if err := tx.Where("user_id = ?", id).Delete(&models.PasswordResetToken{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete reset tokens for user %d: %w", id, err)
	}

	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete user with ID %d: %w", id, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction for user deletion: %w", err)
	}

	log.Printf("Successfully deleted user with ID %d", id)
	return nil
}
