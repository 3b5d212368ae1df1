package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"autohive/database"
	"autohive/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 折扣級距：7 天以上 9 折，30 天以上 8 折
const (
	weeklyDiscountDays  = 7
	monthlyDiscountDays = 30
	weeklyDiscountRate  = 0.10
	monthlyDiscountRate = 0.20
	taxRate             = 0.10
)

// CostBreakdown 費用明細，同樣輸入必得同樣輸出
type CostBreakdown struct {
	Days      int     `json:"days"`
	DailyRate float64 `json:"daily_rate"`
	Subtotal  float64 `json:"subtotal"`
	Discount  float64 `json:"discount"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
}

// roundCents 金額四捨五入到分
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateRentalCost 以日租金與起訖日計算費用，天數無條件進位
func CalculateRentalCost(dailyRate float64, startDate, endDate time.Time) (CostBreakdown, error) {
	if !endDate.After(startDate) {
		return CostBreakdown{}, fmt.Errorf("%w: end_date must be after start_date", ErrValidation)
	}
	if dailyRate <= 0 {
		return CostBreakdown{}, fmt.Errorf("%w: invalid daily_rate %.2f", ErrValidation, dailyRate)
	}

	days := int(math.Ceil(endDate.Sub(startDate).Hours() / 24.0))
	subtotal := roundCents(dailyRate * float64(days))

	var discount float64
	switch {
	case days >= monthlyDiscountDays:
		discount = roundCents(subtotal * monthlyDiscountRate)
	case days >= weeklyDiscountDays:
		discount = roundCents(subtotal * weeklyDiscountRate)
	}

	tax := roundCents((subtotal - discount) * taxRate)
	total := roundCents(subtotal - discount + tax)

	return CostBreakdown{
		Days:      days,
		DailyRate: dailyRate,
		Subtotal:  subtotal,
		Discount:  discount,
		Tax:       tax,
		Total:     total,
	}, nil
}

// RangesOverlap 判斷兩個半開區間 [start, end) 是否重疊，相鄰不算重疊
func RangesOverlap(existingStart, existingEnd, newStart, newEnd time.Time) bool {
	return existingStart.Before(newEnd) && existingEnd.After(newStart)
}

// 狀態機：pending -> confirmed -> active -> completed，pending/confirmed 可取消
var allowedTransitions = map[string][]string{
	models.RentalStatusPending:   {models.RentalStatusConfirmed, models.RentalStatusCancelled},
	models.RentalStatusConfirmed: {models.RentalStatusActive, models.RentalStatusCancelled},
	models.RentalStatusActive:    {models.RentalStatusCompleted},
	models.RentalStatusCompleted: {},
	models.RentalStatusCancelled: {},
}

// CanTransition 檢查狀態轉換是否合法
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// countConflicts 計算指定車輛在 [start, end) 內未取消的租賃數量，呼叫端需已持有車輛列鎖
func countConflicts(tx *gorm.DB, vehicleID int, startDate, endDate time.Time, excludeRentalID int) (int64, error) {
	var count int64
	query := tx.Model(&models.Rental{}).
		Where("vehicle_id = ? AND status <> ?", vehicleID, models.RentalStatusCancelled).
		Where("start_date < ? AND end_date > ?", endDate, startDate)
	if excludeRentalID > 0 {
		query = query.Where("rental_id <> ?", excludeRentalID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count conflicting rentals: %w", err)
	}
	return count, nil
}

// CheckVehicleAvailability 查詢車輛在日期區間內是否可租
func CheckVehicleAvailability(vehicleID int, startDate, endDate time.Time) (bool, error) {
	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: vehicle %d not found", ErrNotFound, vehicleID)
		}
		return false, fmt.Errorf("failed to find vehicle %d: %w", vehicleID, err)
	}

	if !vehicle.IsAvailable {
		return false, nil
	}

	count, err := countConflicts(database.DB, vehicleID, startDate, endDate, 0)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// CreateRental 建立租賃。鎖定車輛列後檢查重疊並寫入，避免兩個請求同時通過檢查
func CreateRental(userID, vehicleID int, startDate, endDate time.Time, pickupLocation string) (*models.Rental, error) {
	var rental *models.Rental

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&vehicle, vehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: vehicle %d not found", ErrNotFound, vehicleID)
			}
			return fmt.Errorf("failed to lock vehicle %d: %w", vehicleID, err)
		}

		if !vehicle.IsAvailable {
			return fmt.Errorf("%w: vehicle %d is not available for rental", ErrConflict, vehicleID)
		}

		count, err := countConflicts(tx, vehicleID, startDate, endDate, 0)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: vehicle %d already booked in the requested date range", ErrConflict, vehicleID)
		}

		cost, err := CalculateRentalCost(vehicle.DailyRate, startDate, endDate)
		if err != nil {
			return err
		}

		rental = &models.Rental{
			UserID:         userID,
			VehicleID:      vehicleID,
			StartDate:      startDate,
			EndDate:        endDate,
			PickupLocation: pickupLocation,
			Days:           cost.Days,
			DailyRate:      cost.DailyRate,
			Subtotal:       cost.Subtotal,
			Discount:       cost.Discount,
			Tax:            cost.Tax,
			TotalCost:      cost.Total,
			Status:         models.RentalStatusPending,
			PaymentStatus:  models.PaymentStatusPending,
		}

		if err := tx.Create(rental).Error; err != nil {
			return fmt.Errorf("failed to create rental: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := database.DB.Preload("User").Preload("Vehicle").Preload("Payments").
		First(rental, rental.RentalID).Error; err != nil {
		return nil, fmt.Errorf("failed to preload rental %d: %w", rental.RentalID, err)
	}

	log.Printf("Successfully created rental %d for user %d on vehicle %d (%s ~ %s, total %.2f)",
		rental.RentalID, userID, vehicleID,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), rental.TotalCost)
	return rental, nil
}

// GetRentalByID 查詢單筆租賃並檢查擁有權
func GetRentalByID(rentalID, currentUserID int, role string) (*models.Rental, error) {
	var rental models.Rental
	if err := database.DB.Preload("User").Preload("Vehicle").Preload("Payments").
		First(&rental, rentalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rental %d not found", ErrNotFound, rentalID)
		}
		return nil, fmt.Errorf("failed to get rental %d: %w", rentalID, err)
	}

	if role != "admin" && rental.UserID != currentUserID {
		return nil, fmt.Errorf("%w: you can only view your own rentals", ErrForbidden)
	}
	return &rental, nil
}

// GetRentalsByUser 查詢會員自己的租賃紀錄
func GetRentalsByUser(userID int) ([]models.Rental, error) {
	var rentals []models.Rental
	if err := database.DB.Preload("Vehicle").Preload("Payments").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rentals).Error; err != nil {
		log.Printf("Failed to get rentals for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to get rentals for user %d: %w", userID, err)
	}
	return rentals, nil
}

// GetAllRentals 查詢所有租賃紀錄（管理員），可依狀態過濾
func GetAllRentals(status string) ([]models.Rental, error) {
	query := database.DB.Preload("User").Preload("Vehicle").Preload("Payments")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rentals []models.Rental
	if err := query.Order("created_at DESC").Find(&rentals).Error; err != nil {
		log.Printf("Failed to get all rentals: %v", err)
		return nil, fmt.Errorf("failed to get all rentals: %w", err)
	}
	return rentals, nil
}

// UpdateRentalStatus 轉換租賃狀態，非法轉換一律拒絕
func UpdateRentalStatus(rentalID int, newStatus string, currentUserID int, role string) (*models.Rental, error) {
	var rental models.Rental
	if err := database.DB.First(&rental, rentalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rental %d not found", ErrNotFound, rentalID)
		}
		return nil, fmt.Errorf("failed to find rental %d: %w", rentalID, err)
	}

	if role != "admin" && rental.UserID != currentUserID {
		return nil, fmt.Errorf("%w: you can only update your own rentals", ErrForbidden)
	}

	if !CanTransition(rental.Status, newStatus) {
		return nil, fmt.Errorf("%w: cannot transition rental %d from %s to %s",
			ErrInvalidTransition, rentalID, rental.Status, newStatus)
	}

	rental.Status = newStatus
	if err := database.DB.Save(&rental).Error; err != nil {
		return nil, fmt.Errorf("failed to update rental %d status: %w", rentalID, err)
	}

	log.Printf("Rental %d status updated to %s by user %d", rentalID, newStatus, currentUserID)
	return &rental, nil
}

// CancelRental 取消租賃，只允許 pending 或 confirmed 狀態
func CancelRental(rentalID int, reason string, currentUserID int, role string) (*models.Rental, error) {
	var rental models.Rental
	if err := database.DB.First(&rental, rentalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rental %d not found", ErrNotFound, rentalID)
		}
		return nil, fmt.Errorf("failed to find rental %d: %w", rentalID, err)
	}

	if role != "admin" && rental.UserID != currentUserID {
		return nil, fmt.Errorf("%w: you can only cancel your own rentals", ErrForbidden)
	}

	if !CanTransition(rental.Status, models.RentalStatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel rental %d with status %s",
			ErrInvalidTransition, rentalID, rental.Status)
	}

	rental.Status = models.RentalStatusCancelled
	rental.CancelReason = reason
	if err := database.DB.Save(&rental).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel rental %d: %w", rentalID, err)
	}

	log.Printf("Rental %d cancelled by user %d: %s", rentalID, currentUserID, reason)
	return &rental, nil
}

// ExtendRental 延長租期。僅需檢查 [原結束日, 新結束日) 的重疊，全程重新計價
func ExtendRental(rentalID int, newEndDate time.Time, currentUserID int, role string) (*models.Rental, error) {
	var rental models.Rental

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rental, rentalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: rental %d not found", ErrNotFound, rentalID)
			}
			return fmt.Errorf("failed to find rental %d: %w", rentalID, err)
		}

		if role != "admin" && rental.UserID != currentUserID {
			return fmt.Errorf("%w: you can only extend your own rentals", ErrForbidden)
		}

		if rental.Status != models.RentalStatusPending &&
			rental.Status != models.RentalStatusConfirmed &&
			rental.Status != models.RentalStatusActive {
			return fmt.Errorf("%w: cannot extend rental %d with status %s",
				ErrInvalidTransition, rentalID, rental.Status)
		}

		if !newEndDate.After(rental.EndDate) {
			return fmt.Errorf("%w: new_end_date must be after current end_date", ErrValidation)
		}

		var vehicle models.Vehicle
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&vehicle, rental.VehicleID).Error; err != nil {
			return fmt.Errorf("failed to lock vehicle %d: %w", rental.VehicleID, err)
		}

		count, err := countConflicts(tx, rental.VehicleID, rental.EndDate, newEndDate, rental.RentalID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: vehicle %d already booked in the extension range", ErrConflict, rental.VehicleID)
		}

		cost, err := CalculateRentalCost(rental.DailyRate, rental.StartDate, newEndDate)
		if err != nil {
			return err
		}

		rental.EndDate = newEndDate
		rental.Days = cost.Days
		rental.Subtotal = cost.Subtotal
		rental.Discount = cost.Discount
		rental.Tax = cost.Tax
		rental.TotalCost = cost.Total

		if err := tx.Save(&rental).Error; err != nil {
			return fmt.Errorf("failed to extend rental %d: %w", rentalID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Rental %d extended to %s, new total %.2f",
		rentalID, newEndDate.Format("2006-01-02"), rental.TotalCost)
	return &rental, nil
}

// ActivateDueRentals 將起租日已到的 confirmed 租賃轉為 active（定時任務）
func ActivateDueRentals() error {
	now := time.Now().UTC()
	result := database.DB.Model(&models.Rental{}).
		Where("status = ? AND start_date <= ?", models.RentalStatusConfirmed, now).
		Update("status", models.RentalStatusActive)
	if result.Error != nil {
		return fmt.Errorf("failed to activate due rentals: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Activated %d due rentals", result.RowsAffected)
	}
	return nil
}

// CompleteExpiredRentals 將結束日已過的 active 租賃轉為 completed（定時任務）
func CompleteExpiredRentals() error {
	now := time.Now().UTC()
	result := database.DB.Model(&models.Rental{}).
		Where("status = ? AND end_date <= ?", models.RentalStatusActive, now).
		Update("status", models.RentalStatusCompleted)
	if result.Error != nil {
		return fmt.Errorf("failed to complete expired rentals: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Completed %d expired rentals", result.RowsAffected)
	}
	return nil
}

// ExpireUnpaidRentals 取消超過 24 小時仍未付款的 pending 租賃，釋放車輛檔期（定時任務）
func ExpireUnpaidRentals() error {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	result := database.DB.Model(&models.Rental{}).
		Where("status = ? AND payment_status = ? AND created_at < ?",
			models.RentalStatusPending, models.PaymentStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":        models.RentalStatusCancelled,
			"cancel_reason": "payment not completed within 24 hours",
		})
	if result.Error != nil {
		return fmt.Errorf("failed to expire unpaid rentals: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("Expired %d unpaid rentals", result.RowsAffected)
	}
	return nil
}
