package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"autohive/models"
	"autohive/services"

	"github.com/gin-gonic/gin"
)

// RentalInput 定義用於綁定租賃請求的輸入結構體
type RentalInput struct {
	VehicleID      int    `json:"vehicle_id" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	PickupLocation string `json:"pickup_location"`
}

// parseDate 解析 YYYY-MM-DD 格式的日期，統一使用 UTC
func parseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in 'YYYY-MM-DD' format")
	}
	return t.UTC(), nil
}

// CreateRental 建立租賃資料檢查
func CreateRental(c *gin.Context) {
	var input RentalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的輸入資料",
			"error":   "請提供車輛 ID、起租日和結束日",
			"code":    "ERR_INVALID_INPUT",
		})
		return
	}

	startDate, err := parseDate(input.StartDate)
	if err != nil {
		log.Printf("Failed to parse start_date %s: %v", input.StartDate, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的起租日格式",
			"error":   err.Error(),
			"code":    "ERR_INVALID_DATE_FORMAT",
		})
		return
	}

	endDate, err := parseDate(input.EndDate)
	if err != nil {
		log.Printf("Failed to parse end_date %s: %v", input.EndDate, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的結束日格式",
			"error":   err.Error(),
			"code":    "ERR_INVALID_DATE_FORMAT",
		})
		return
	}

	currentUserID := c.GetInt("user_id")

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if startDate.Before(today) {
		log.Printf("Start date %s is before today %s", startDate.Format("2006-01-02"), today.Format("2006-01-02"))
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "起租日必須在今天或未來",
			"error":   "start_date must be today or in the future",
			"code":    "ERR_INVALID_DATE",
		})
		return
	}

	if !endDate.After(startDate) {
		log.Printf("End date %s is not after start date %s", endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "結束日必須晚於起租日",
			"error":   "end_date must be after start_date",
			"code":    "ERR_INVALID_DATE",
		})
		return
	}

	rental, err := services.CreateRental(currentUserID, input.VehicleID, startDate, endDate, input.PickupLocation)
	if err != nil {
		log.Printf("Failed to create rental for user %d on vehicle %d: %v", currentUserID, input.VehicleID, err)
		ServiceErrorResponse(c, "租車失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "租車成功", rental.ToResponse())
}

// GetMyRentals 查詢會員自己的租賃紀錄
func GetMyRentals(c *gin.Context) {
	currentUserID := c.GetInt("user_id")

	rentals, err := services.GetRentalsByUser(currentUserID)
	if err != nil {
		log.Printf("Failed to get rentals for user %d: %v", currentUserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢租賃紀錄失敗", err.Error())
		return
	}

	rentalResponses := make([]models.SimpleRentalResponse, len(rentals))
	for i, rental := range rentals {
		rentalResponses[i] = rental.ToSimpleResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", rentalResponses)
}

// GetRentalByID 查詢特定租賃記錄
func GetRentalByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid rental ID: id=%s, error=%v", idStr, err)
		ErrorResponse(c, http.StatusBadRequest, "無效的租賃ID", err.Error())
		return
	}

	currentUserID := c.GetInt("user_id")
	role := c.GetString("role")

	rental, err := services.GetRentalByID(id, currentUserID, role)
	if err != nil {
		log.Printf("Failed to get rental: rental_id=%d, user_id=%d, error=%v", id, currentUserID, err)
		ServiceErrorResponse(c, "租賃記錄不存在或無權訪問", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", rental.ToResponse())
}

// CancelRental 取消租賃資料檢查
func CancelRental(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid rental ID: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的租賃ID",
			"error":   err.Error(),
			"code":    "ERR_INVALID_ID",
		})
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	// 取消原因可省略
	_ = c.ShouldBindJSON(&input)

	currentUserID := c.GetInt("user_id")
	role := c.GetString("role")

	rental, err := services.CancelRental(id, input.Reason, currentUserID, role)
	if err != nil {
		log.Printf("Failed to cancel rental %d by user %d: %v", id, currentUserID, err)
		ServiceErrorResponse(c, "取消租賃失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "取消租賃成功", rental.ToSimpleResponse())
}

// ProcessPayment 付款資料檢查
func ProcessPayment(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid rental ID: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的租賃ID",
			"error":   err.Error(),
			"code":    "ERR_INVALID_ID",
		})
		return
	}

	var input struct {
		Method string  `json:"method" binding:"required"`
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid payment input: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的輸入資料",
			"error":   "請提供付款方式和金額",
			"code":    "ERR_INVALID_INPUT",
		})
		return
	}

	currentUserID := c.GetInt("user_id")
	role := c.GetString("role")

	payment, err := services.CapturePayment(id, input.Method, input.Amount, currentUserID, role)
	if err != nil {
		log.Printf("Failed to process payment for rental %d: %v", id, err)
		ServiceErrorResponse(c, "付款失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "付款成功", payment.ToResponse())
}

// ExtendRental 延長租期資料檢查
func ExtendRental(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid rental ID: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的租賃ID",
			"error":   err.Error(),
			"code":    "ERR_INVALID_ID",
		})
		return
	}

	var input struct {
		NewEndDate string `json:"new_end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的輸入資料",
			"error":   "請提供新的結束日",
			"code":    "ERR_INVALID_INPUT",
		})
		return
	}

	newEndDate, err := parseDate(input.NewEndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的結束日格式",
			"error":   err.Error(),
			"code":    "ERR_INVALID_DATE_FORMAT",
		})
		return
	}

	currentUserID := c.GetInt("user_id")
	role := c.GetString("role")

	rental, err := services.ExtendRental(id, newEndDate, currentUserID, role)
	if err != nil {
		log.Printf("Failed to extend rental %d: %v", id, err)
		ServiceErrorResponse(c, "延長租期失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "延長租期成功", rental.ToSimpleResponse())
}

// RefundPayment 退款（管理員），以租賃為單位退還成功的付款列
func RefundPayment(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid rental ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的租賃ID", err.Error())
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	refund, err := services.RefundRentalPayment(id, input.Reason)
	if err != nil {
		log.Printf("Failed to refund rental %d: %v", id, err)
		ServiceErrorResponse(c, "退款失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "退款成功", refund.ToResponse())
}

// GetRentalPayments 查詢租賃的付款紀錄，本人或管理員
func GetRentalPayments(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的租賃ID", err.Error())
		return
	}

	currentUserID := c.GetInt("user_id")
	role := c.GetString("role")

	// 擁有權檢查
	if _, err := services.GetRentalByID(id, currentUserID, role); err != nil {
		log.Printf("Failed to get rental %d for payments: %v", id, err)
		ServiceErrorResponse(c, "租賃記錄不存在或無權訪問", err)
		return
	}

	payments, err := services.GetPaymentsByRental(id)
	if err != nil {
		log.Printf("Failed to get payments for rental %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢付款紀錄失敗", err.Error())
		return
	}

	paymentResponses := make([]models.PaymentResponse, len(payments))
	for i, payment := range payments {
		paymentResponses[i] = payment.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", paymentResponses)
}

// GetAllRentals 查詢所有租賃紀錄（管理員），可帶 status 過濾
func GetAllRentals(c *gin.Context) {
	status := c.Query("status")

	rentals, err := services.GetAllRentals(status)
	if err != nil {
		log.Printf("Failed to get all rentals: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢租賃紀錄失敗", err.Error())
		return
	}

	rentalResponses := make([]models.RentalResponse, len(rentals))
	for i, rental := range rentals {
		rentalResponses[i] = rental.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", rentalResponses)
}

// UpdateRentalStatus 更新租賃狀態（管理員）
func UpdateRentalStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid rental ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的租賃ID", err.Error())
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供新狀態")
		return
	}

	currentUserID := c.GetInt("user_id")
	role := c.GetString("role")

	rental, err := services.UpdateRentalStatus(id, input.Status, currentUserID, role)
	if err != nil {
		log.Printf("Failed to update rental %d status to %s: %v", id, input.Status, err)
		ServiceErrorResponse(c, "更新租賃狀態失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "更新成功", rental.ToSimpleResponse())
}
