package handlers

import (
	"log"
	"net/http"
	"strconv"

	"autohive/models"
	"autohive/services"

	"github.com/gin-gonic/gin"
)

// ReviewInput 定義用於綁定評論請求的輸入結構體
type ReviewInput struct {
	VehicleID int    `json:"vehicle_id" binding:"required"`
	RentalID  int    `json:"rental_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// CreateReview 建立評論資料檢查
func CreateReview(c *gin.Context) {
	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供車輛 ID、租賃 ID 和評分")
		return
	}

	currentUserID := c.GetInt("user_id")

	review, err := services.CreateReview(currentUserID, input.VehicleID, input.RentalID, input.Rating, input.Comment)
	if err != nil {
		log.Printf("Failed to create review for rental %d by user %d: %v", input.RentalID, currentUserID, err)
		ServiceErrorResponse(c, "建立評論失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "評論成功", review.ToResponse())
}

// GetVehicleReviews 查詢車輛的所有評論
func GetVehicleReviews(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error())
		return
	}

	reviews, err := services.GetReviewsByVehicle(id)
	if err != nil {
		log.Printf("Failed to get reviews for vehicle %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢評論失敗", err.Error())
		return
	}

	reviewResponses := make([]models.ReviewResponse, len(reviews))
	for i, review := range reviews {
		reviewResponses[i] = review.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", reviewResponses)
}

// GetMyReviews 查詢會員自己的評論
func GetMyReviews(c *gin.Context) {
	currentUserID := c.GetInt("user_id")

	reviews, err := services.GetReviewsByUser(currentUserID)
	if err != nil {
		log.Printf("Failed to get reviews for user %d: %v", currentUserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢評論失敗", err.Error())
		return
	}

	reviewResponses := make([]models.ReviewResponse, len(reviews))
	for i, review := range reviews {
		reviewResponses[i] = review.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", reviewResponses)
}

// GetUserReviews 查詢特定會員的評論，本人或管理員
func GetUserReviews(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的會員ID", err.Error())
		return
	}

	currentUserID := c.GetInt("user_id")
	role := c.GetString("role")
	if role != "admin" && id != currentUserID {
		ErrorResponse(c, http.StatusForbidden, "權限不足", "you can only view your own reviews")
		return
	}

	reviews, err := services.GetReviewsByUser(id)
	if err != nil {
		log.Printf("Failed to get reviews for user %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢評論失敗", err.Error())
		return
	}

	reviewResponses := make([]models.ReviewResponse, len(reviews))
	for i, review := range reviews {
		reviewResponses[i] = review.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", reviewResponses)
}

// UpdateReview 更新評論資料檢查
func UpdateReview(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的評論ID", err.Error())
		return
	}

	var input struct {
		Rating  int    `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供評分")
		return
	}

	currentUserID := c.GetInt("user_id")

	review, err := services.UpdateReview(id, currentUserID, input.Rating, input.Comment)
	if err != nil {
		log.Printf("Failed to update review %d by user %d: %v", id, currentUserID, err)
		ServiceErrorResponse(c, "更新評論失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "更新成功", review.ToResponse())
}

// DeleteReview 刪除評論，本人或管理員
func DeleteReview(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的評論ID", err.Error())
		return
	}

	currentUserID := c.GetInt("user_id")
	role := c.GetString("role")

	if err := services.DeleteReview(id, currentUserID, role); err != nil {
		log.Printf("Failed to delete review %d by user %d: %v", id, currentUserID, err)
		ServiceErrorResponse(c, "刪除評論失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "刪除成功", nil)
}

// CheckReviewEligibility 查詢對指定車輛的評論資格
func CheckReviewEligibility(c *gin.Context) {
	vehicleIDStr := c.Query("vehicle_id")
	vehicleID, err := strconv.Atoi(vehicleIDStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", "請提供 vehicle_id")
		return
	}

	currentUserID := c.GetInt("user_id")

	eligibility, err := services.CheckReviewEligibility(currentUserID, vehicleID)
	if err != nil {
		log.Printf("Failed to check review eligibility for user %d on vehicle %d: %v", currentUserID, vehicleID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢評論資格失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", eligibility)
}

// GetPlatformReviewStats 平台評論統計
func GetPlatformReviewStats(c *gin.Context) {
	stats, err := services.GetPlatformReviewStats()
	if err != nil {
		log.Printf("Failed to get platform review stats: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢評論統計失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", stats)
}
