package handlers

import (
	"log"
	"net/http"
	"regexp"

	"autohive/models"
	"autohive/services"
	"autohive/utils"

	"github.com/gin-gonic/gin"
)

// 電子郵件驗證 regex
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// 電話驗證字串 (例如：10 位數)
var phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)

// validPassword 最少 8 個字元，至少一個字母和一個數字
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return regexp.MustCompile(`[a-zA-Z]`).MatchString(password) &&
		regexp.MustCompile(`[0-9]`).MatchString(password)
}

// 註冊會員資料檢查
func RegisterUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	// 驗證電子郵件
	if user.Email == "" || !emailRegex.MatchString(user.Email) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電子郵件地址", "invalid email format")
		return
	}

	// 驗證電話
	if user.Phone == "" || !phoneRegex.MatchString(user.Phone) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電話號碼（10位數字）", "invalid phone format")
		return
	}

	if !validPassword(user.Password) {
		ErrorResponse(c, http.StatusBadRequest, "密碼必須至少8個字符，包含字母和數字", "weak password")
		return
	}

	if user.PaymentMethod != "credit_card" && user.PaymentMethod != "e_wallet" {
		ErrorResponse(c, http.StatusBadRequest, "payment_method 必須是 'credit_card' 或 'e_wallet'", "invalid payment_method")
		return
	}

	if err := services.RegisterUser(&user); err != nil {
		log.Printf("Failed to register user with email %s: %v", user.Email, err)
		ServiceErrorResponse(c, "會員註冊失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "會員註冊成功", user.ToSimpleResponse())
}

// 登入會員資料檢查
func LoginUser(c *gin.Context) {
	var loginData struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginData); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if !emailRegex.MatchString(loginData.Email) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電子郵件地址", "invalid email format")
		return
	}

	// 帳號不存在與密碼錯誤回覆相同訊息
	user, err := services.LoginUser(loginData.Email, loginData.Password)
	if err != nil {
		log.Printf("Login failed for email %s: %v", loginData.Email, err)
		ErrorResponse(c, http.StatusUnauthorized, "登入失敗，檢查電子郵件或密碼", "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.UserID, user.Role)
	if err != nil {
		log.Printf("Failed to generate token for user %d: %v", user.UserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "產生 token 失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token": token,
		"user":  user.ToSimpleResponse(),
	})
}

// LogoutUser 登出。JWT 為無狀態，由客戶端丟棄 token
func LogoutUser(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "登出成功", nil)
}

// GetProfile 查看個人資料
func GetProfile(c *gin.Context) {
	currentUserID := c.GetInt("user_id")

	user, err := services.GetUserByID(currentUserID)
	if err != nil {
		log.Printf("Failed to get profile for user %d: %v", currentUserID, err)
		ServiceErrorResponse(c, "查詢個人資料失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", user.ToResponse())
}

// UpdateProfile 更新個人資料
func UpdateProfile(c *gin.Context) {
	currentUserID := c.GetInt("user_id")

	var updatedFields map[string]interface{}
	if err := c.ShouldBindJSON(&updatedFields); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if len(updatedFields) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "未提供任何更新字段", "no fields provided")
		return
	}

	if err := services.UpdateUser(currentUserID, updatedFields); err != nil {
		log.Printf("Failed to update user %d with fields %v: %v", currentUserID, updatedFields, err)
		ServiceErrorResponse(c, "更新個人資料失敗", err)
		return
	}

	updatedUser, err := services.GetUserByID(currentUserID)
	if err != nil {
		log.Printf("Failed to fetch updated user %d: %v", currentUserID, err)
		ServiceErrorResponse(c, "獲取更新後的會員資料失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "更新成功", updatedUser.ToResponse())
}

// ChangePassword 變更密碼
func ChangePassword(c *gin.Context) {
	currentUserID := c.GetInt("user_id")

	var input struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if !validPassword(input.NewPassword) {
		ErrorResponse(c, http.StatusBadRequest, "密碼必須至少8個字符，包含字母和數字", "weak password")
		return
	}

	if err := services.ChangePassword(currentUserID, input.OldPassword, input.NewPassword); err != nil {
		log.Printf("Failed to change password for user %d: %v", currentUserID, err)
		ServiceErrorResponse(c, "變更密碼失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "密碼變更成功", nil)
}

// ForgotPassword 申請密碼重設。無論信箱是否存在都回覆成功
func ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if !emailRegex.MatchString(input.Email) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電子郵件地址", "invalid email format")
		return
	}

	token, err := services.CreatePasswordResetToken(input.Email)
	if err != nil {
		log.Printf("Failed to create reset token for %s: %v", input.Email, err)
		ErrorResponse(c, http.StatusInternalServerError, "申請密碼重設失敗", err.Error())
		return
	}

	// 無郵件服務，token 直接回傳（正式環境應改為寄送郵件）
	data := gin.H{}
	if token != "" {
		data["reset_token"] = token
	}
	SuccessResponse(c, http.StatusOK, "若信箱存在，重設連結已寄出", data)
}

// ResetPassword 以 token 重設密碼
func ResetPassword(c *gin.Context) {
	var input struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if !validPassword(input.NewPassword) {
		ErrorResponse(c, http.StatusBadRequest, "密碼必須至少8個字符，包含字母和數字", "weak password")
		return
	}

	if err := services.ResetPassword(input.Token, input.NewPassword); err != nil {
		log.Printf("Failed to reset password: %v", err)
		ServiceErrorResponse(c, "重設密碼失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "密碼重設成功", nil)
}
