package handlers

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"autohive/models"
	"autohive/services"

	"github.com/gin-gonic/gin"
)

// uploadLimiter 上傳限流器，由 main 注入
var uploadLimiter *services.RateLimiter

// SetUploadLimiter 設定上傳限流器
func SetUploadLimiter(l *services.RateLimiter) {
	uploadLimiter = l
}

// ListVehicles 查詢車輛列表，支援類別/地點/價格區間過濾與分頁
func ListVehicles(c *gin.Context) {
	var filter services.VehicleFilter
	filter.Category = c.Query("category")
	filter.Location = c.Query("location")

	if priceMin := c.Query("price_min"); priceMin != "" {
		v, err := strconv.ParseFloat(priceMin, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "無效的最低價格", err.Error())
			return
		}
		filter.PriceMin = v
	}
	if priceMax := c.Query("price_max"); priceMax != "" {
		v, err := strconv.ParseFloat(priceMax, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "無效的最高價格", err.Error())
			return
		}
		filter.PriceMax = v
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	vehicles, total, err := services.ListVehicles(filter)
	if err != nil {
		log.Printf("Failed to list vehicles: %v", err)
		ServiceErrorResponse(c, "查詢車輛失敗", err)
		return
	}

	vehicleResponses := make([]models.VehicleResponse, len(vehicles))
	for i, vehicle := range vehicles {
		vehicleResponses[i] = vehicle.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"vehicles":  vehicleResponses,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// GetVehicle 查詢特定車輛
func GetVehicle(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("Invalid vehicle ID: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error())
		return
	}

	vehicle, err := services.GetVehicleByID(id)
	if err != nil {
		log.Printf("Failed to get vehicle %d: %v", id, err)
		ServiceErrorResponse(c, "車輛不存在", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", vehicle.ToResponse())
}

// CheckVehicleAvailability 查詢車輛在日期區間內是否可租
func CheckVehicleAvailability(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error())
		return
	}

	startDate, err := parseDate(c.Query("start_date"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的起租日格式", err.Error())
		return
	}
	endDate, err := parseDate(c.Query("end_date"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的結束日格式", err.Error())
		return
	}
	if !endDate.After(startDate) {
		ErrorResponse(c, http.StatusBadRequest, "結束日必須晚於起租日", "end_date must be after start_date")
		return
	}

	available, err := services.CheckVehicleAvailability(id, startDate, endDate)
	if err != nil {
		log.Printf("Failed to check availability for vehicle %d: %v", id, err)
		ServiceErrorResponse(c, "查詢車輛可用性失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"vehicle_id": id,
		"start_date": startDate.Format("2006-01-02"),
		"end_date":   endDate.Format("2006-01-02"),
		"available":  available,
	})
}

// CreateVehicle 新增車輛（管理員）
func CreateVehicle(c *gin.Context) {
	var vehicle models.Vehicle
	if err := c.ShouldBindJSON(&vehicle); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if vehicle.Make == "" || vehicle.Model == "" || vehicle.RegistrationNumber == "" || vehicle.Location == "" {
		ErrorResponse(c, http.StatusBadRequest, "請提供完整的車輛資料", "make, model, registration_number and location are required")
		return
	}

	if err := services.CreateVehicle(&vehicle); err != nil {
		log.Printf("Failed to create vehicle %s: %v", vehicle.RegistrationNumber, err)
		ServiceErrorResponse(c, "新增車輛失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "新增車輛成功", vehicle.ToResponse())
}

// UpdateVehicle 更新車輛資料（管理員）
func UpdateVehicle(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error())
		return
	}

	var updatedFields map[string]interface{}
	if err := c.ShouldBindJSON(&updatedFields); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if len(updatedFields) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "未提供任何更新字段", "no fields provided")
		return
	}

	if err := services.UpdateVehicle(id, updatedFields); err != nil {
		log.Printf("Failed to update vehicle %d: %v", id, err)
		ServiceErrorResponse(c, "更新車輛失敗", err)
		return
	}

	vehicle, err := services.GetVehicleByID(id)
	if err != nil {
		ServiceErrorResponse(c, "獲取更新後的車輛資料失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "更新成功", vehicle.ToResponse())
}

// SetVehicleAvailability 上下架車輛（管理員）
func SetVehicleAvailability(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error())
		return
	}

	var input struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "請提供 is_available")
		return
	}

	if err := services.SetVehicleAvailability(id, *input.IsAvailable); err != nil {
		log.Printf("Failed to set vehicle %d availability: %v", id, err)
		ServiceErrorResponse(c, "更新車輛狀態失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "更新成功", gin.H{
		"vehicle_id":   id,
		"is_available": *input.IsAvailable,
	})
}

// DeleteVehicle 刪除車輛（管理員），尚有未結束租賃時拒絕
func DeleteVehicle(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error())
		return
	}

	if err := services.DeleteVehicle(id); err != nil {
		log.Printf("Failed to delete vehicle %d: %v", id, err)
		ServiceErrorResponse(c, "刪除車輛失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "刪除成功", nil)
}

// UploadVehicleImage 上傳車輛圖片（管理員），每位會員每小時限制 10 次
func UploadVehicleImage(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的車輛ID", err.Error())
		return
	}

	currentUserID := c.GetInt("user_id")

	allowed, err := uploadLimiter.Allow(c.Request.Context(), strconv.Itoa(currentUserID))
	if err != nil {
		log.Printf("Rate limiter error for user %d: %v", currentUserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "上傳失敗", err.Error())
		return
	}
	if !allowed {
		log.Printf("Upload rate limit exceeded for user %d", currentUserID)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"status":  false,
			"message": "上傳次數過多，請稍後再試",
			"error":   "upload rate limit exceeded",
			"code":    "ERR_RATE_LIMIT",
		})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供圖片檔案", err.Error())
		return
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		ErrorResponse(c, http.StatusBadRequest, "僅支援 jpg/jpeg/png 圖片", "unsupported image format")
		return
	}

	filename := fmt.Sprintf("vehicle_%d_%d%s", id, time.Now().Unix(), ext)
	dst := filepath.Join("uploads", filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		log.Printf("Failed to save uploaded image for vehicle %d: %v", id, err)
		ErrorResponse(c, http.StatusInternalServerError, "儲存圖片失敗", err.Error())
		return
	}

	imageURL := "/uploads/" + filename
	if err := services.UpdateVehicleImage(id, imageURL); err != nil {
		log.Printf("Failed to update image for vehicle %d: %v", id, err)
		ServiceErrorResponse(c, "更新車輛圖片失敗", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "圖片上傳成功", gin.H{
		"vehicle_id": id,
		"image_url":  imageURL,
	})
}
