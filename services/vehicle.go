package services

import (
	"errors"
	"fmt"
	"log"

	"autohive/database"
	"autohive/models"

	"gorm.io/gorm"
)

var validCategories = map[string]bool{
	"economy": true,
	"sedan":   true,
	"suv":     true,
	"van":     true,
	"luxury":  true,
}

// VehicleFilter 車輛查詢條件，分頁一律走參數化 LIMIT/OFFSET
type VehicleFilter struct {
	Category string
	Location string
	PriceMin float64
	PriceMax float64
	Page     int
	PageSize int
}

// CreateVehicle 新增車輛（管理員）
func CreateVehicle(vehicle *models.Vehicle) error {
	if !validCategories[vehicle.Category] {
		return fmt.Errorf("%w: invalid category: %s", ErrValidation, vehicle.Category)
	}
	if vehicle.DailyRate <= 0 {
		return fmt.Errorf("%w: daily_rate must be positive", ErrValidation)
	}
	if vehicle.Year < 1980 || vehicle.Year > 2100 {
		return fmt.Errorf("%w: invalid year: %d", ErrValidation, vehicle.Year)
	}

	var existing models.Vehicle
	if err := database.DB.Where("registration_number = ?", vehicle.RegistrationNumber).
		First(&existing).Error; err == nil {
		return fmt.Errorf("%w: registration_number %s is already in use", ErrConflict, vehicle.RegistrationNumber)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for duplicate registration_number: %w", err)
	}

	vehicle.IsAvailable = true
	if err := database.DB.Create(vehicle).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: registration_number %s is already in use", ErrConflict, vehicle.RegistrationNumber)
		}
		log.Printf("Failed to create vehicle: %v", err)
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	log.Printf("Successfully created vehicle %d (%s %s, %s)",
		vehicle.VehicleID, vehicle.Make, vehicle.Model, vehicle.RegistrationNumber)
	return nil
}

// GetVehicleByID 查詢單一車輛
func GetVehicleByID(id int) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vehicle %d not found", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get vehicle %d: %w", id, err)
	}
	return &vehicle, nil
}

// ListVehicles 依條件查詢車輛，回傳總筆數供分頁
func ListVehicles(filter VehicleFilter) ([]models.Vehicle, int64, error) {
	query := database.DB.Model(&models.Vehicle{})

	if filter.Category != "" {
		if !validCategories[filter.Category] {
			return nil, 0, fmt.Errorf("%w: invalid category: %s", ErrValidation, filter.Category)
		}
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.PriceMin > 0 {
		query = query.Where("daily_rate >= ?", filter.PriceMin)
	}
	if filter.PriceMax > 0 {
		query = query.Where("daily_rate <= ?", filter.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	var vehicles []models.Vehicle
	if err := query.Limit(filter.PageSize).Offset(offset).
		Order("vehicle_id ASC").
		Find(&vehicles).Error; err != nil {
		log.Printf("Failed to list vehicles: %v", err)
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	return vehicles, total, nil
}

// UpdateVehicle 更新車輛資料，逐欄位檢查
func UpdateVehicle(id int, updatedFields map[string]interface{}) error {
	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: vehicle %d not found", ErrNotFound, id)
		}
		return fmt.Errorf("failed to find vehicle %d: %w", id, err)
	}

	mappedFields := make(map[string]interface{})
	for key, value := range updatedFields {
		switch key {
		case "vehicle_id":
			return fmt.Errorf("%w: cannot update vehicle_id", ErrValidation)
		case "make":
			mappedFields["make"] = value
		case "model":
			mappedFields["model"] = value
		case "year":
			yearFloat, ok := value.(float64)
			if !ok {
				return fmt.Errorf("%w: invalid year type: must be a number", ErrValidation)
			}
			mappedFields["year"] = int(yearFloat)
		case "category":
			categoryStr, ok := value.(string)
			if !ok || !validCategories[categoryStr] {
				return fmt.Errorf("%w: invalid category", ErrValidation)
			}
			mappedFields["category"] = categoryStr
		case "daily_rate":
			rateFloat, ok := value.(float64)
			if !ok || rateFloat <= 0 {
				return fmt.Errorf("%w: daily_rate must be a positive number", ErrValidation)
			}
			mappedFields["daily_rate"] = rateFloat
		case "location":
			mappedFields["location"] = value
		case "registration_number":
			regStr, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: invalid registration_number type: must be a string", ErrValidation)
			}
			var existing models.Vehicle
			if err := database.DB.Where("registration_number = ? AND vehicle_id != ?", regStr, id).
				First(&existing).Error; err == nil {
				return fmt.Errorf("%w: registration_number %s is already in use", ErrConflict, regStr)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check for duplicate registration_number: %w", err)
			}
			mappedFields["registration_number"] = regStr
		case "is_available":
			availBool, ok := value.(bool)
			if !ok {
				return fmt.Errorf("%w: invalid is_available type: must be a boolean", ErrValidation)
			}
			mappedFields["is_available"] = availBool
		case "image_url":
			mappedFields["image_url"] = value
		default:
			return fmt.Errorf("%w: invalid field: %s", ErrValidation, key)
		}
	}

	if err := database.DB.Model(&vehicle).Updates(mappedFields).Error; err != nil {
		log.Printf("Failed to update vehicle %d with fields %v: %v", id, mappedFields, err)
		return fmt.Errorf("failed to update vehicle %d: %w", id, err)
	}

	log.Printf("Successfully updated vehicle %d", id)
	return nil
}

// SetVehicleAvailability 管理員上下架開關。下架僅擋新訂單，不影響既有租賃
func SetVehicleAvailability(id int, available bool) error {
	result := database.DB.Model(&models.Vehicle{}).Where("vehicle_id = ?", id).
		Update("is_available", available)
	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle %d availability: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: vehicle %d not found", ErrNotFound, id)
	}
	log.Printf("Vehicle %d availability set to %v", id, available)
	return nil
}

// DeleteVehicle 軟刪除車輛，尚有未結束租賃時拒絕
func DeleteVehicle(id int) error {
	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: vehicle %d not found", ErrNotFound, id)
		}
		return fmt.Errorf("failed to find vehicle %d: %w", id, err)
	}

	var activeCount int64
	if err := database.DB.Model(&models.Rental{}).
		Where("vehicle_id = ? AND status IN (?, ?, ?)", id,
			models.RentalStatusPending, models.RentalStatusConfirmed, models.RentalStatusActive).
		Count(&activeCount).Error; err != nil {
		return fmt.Errorf("failed to count active rentals for vehicle %d: %w", id, err)
	}
	if activeCount > 0 {
		return fmt.Errorf("%w: vehicle %d has %d active rentals", ErrConflict, id, activeCount)
	}

	if err := database.DB.Delete(&vehicle).Error; err != nil {
		return fmt.Errorf("failed to delete vehicle %d: %w", id, err)
	}

	log.Printf("Successfully deleted vehicle %d", id)
	return nil
}

// UpdateVehicleImage 更新車輛圖片路徑
func UpdateVehicleImage(id int, imageURL string) error {
	result := database.DB.Model(&models.Vehicle{}).Where("vehicle_id = ?", id).
		Update("image_url", imageURL)
	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle %d image: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: vehicle %d not found", ErrNotFound, id)
	}
	return nil
}
