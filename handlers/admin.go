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

// GetDashboard 管理後台總覽
func GetDashboard(c *gin.Context) {
	stats, err := services.GetDashboardStats()
	if err != nil {
		log.Printf("Failed to get dashboard stats: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢後台統計失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", stats)
}

// ExportRentals 匯出所有租賃紀錄，format=csv 或 json（預設 json）
func ExportRentals(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	switch format {
	case "csv":
		filename := fmt.Sprintf("rentals_%s.csv", time.Now().Format("20060102_150405"))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := services.ExportRentalsCSV(c.Writer); err != nil {
			log.Printf("Failed to export rentals as CSV: %v", err)
			c.Status(http.StatusInternalServerError)
			return
		}
	case "json":
		rows, err := services.ExportRentalsJSON()
		if err != nil {
			log.Printf("Failed to export rentals as JSON: %v", err)
			ErrorResponse(c, http.StatusInternalServerError, "匯出租賃紀錄失敗", err.Error())
			return
		}
		SuccessResponse(c, http.StatusOK, "匯出成功", rows)
	default:
		ErrorResponse(c, http.StatusBadRequest, "format 必須是 'csv' 或 'json'", "unsupported export format")
	}
}

// GetAllUsers 查詢所有會員（管理員）
func GetAllUsers(c *gin.Context) {
	users, err := services.GetAllUsers()
	if err != nil {
		log.Printf("Failed to get all users: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢會員失敗", err.Error())
		return
	}

	userResponses := make([]models.SimpleUserResponse, len(users))
	for i, user := range users {
		userResponses[i] = user.ToSimpleResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", userResponses)
}

// GetUser 查詢特定會員（管理員）
func GetUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的會員ID", err.Error())
		return
	}

	user, err := services.GetUserByID(id)
	if err != nil {
		log.Printf("Failed to get user %d: %v", id, err)
		ServiceErrorResponse(c, "會員不存在", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", user.ToResponse())
}

// SetUserActive 停用或啟用會員帳號（管理員）
func SetUserActive(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的會員ID", err.Error())
		return
	}

	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供 is_active")
		return
	}

	if err := services.SetUserActive(id, *input.IsActive); err != nil {
		log.Printf("Failed to set user %d active=%v: %v", id, *input.IsActive, err)
		ServiceErrorResponse(c, "更新會員狀態失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "更新成功", gin.H{
		"user_id":   id,
		"is_active": *input.IsActive,
	})
}

// DeleteUser 刪除會員及其關聯資料（管理員）
func DeleteUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的會員ID", err.Error())
		return
	}

	if err := services.DeleteUser(id); err != nil {
		log.Printf("Failed to delete user %d: %v", id, err)
		ServiceErrorResponse(c, "刪除會員失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "刪除成功", nil)
}
