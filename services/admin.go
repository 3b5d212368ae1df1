package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"autohive/database"
	"autohive/models"
)

// DashboardStats 管理後台總覽
type DashboardStats struct {
	TotalUsers      int64                         `json:"total_users"`
	ActiveUsers     int64                         `json:"active_users"`
	TotalVehicles   int64                         `json:"total_vehicles"`
	RentalsByStatus map[string]int64              `json:"rentals_by_status"`
	TotalRevenue    float64                       `json:"total_revenue"`
	TotalReviews    int64                         `json:"total_reviews"`
	RecentRentals   []models.SimpleRentalResponse `json:"recent_rentals"`
}

// RentalExportRow 匯出用的扁平租賃紀錄
type RentalExportRow struct {
	RentalID      int     `json:"rental_id"`
	UserEmail     string  `json:"user_email"`
	VehicleReg    string  `json:"vehicle_registration"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Days          int     `json:"days"`
	TotalCost     float64 `json:"total_cost"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
}

// GetDashboardStats 彙整後台統計數字
func GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{
		RentalsByStatus: make(map[string]int64),
	}

	if err := database.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := database.DB.Model(&models.User{}).Where("is_active = ?", true).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	if err := database.DB.Model(&models.Vehicle{}).Count(&stats.TotalVehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to count vehicles: %w", err)
	}
	if err := database.DB.Model(&models.Review{}).Count(&stats.TotalReviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	// 各狀態租賃數
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := database.DB.Model(&models.Rental{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count rentals by status: %w", err)
	}
	for _, c := range counts {
		stats.RentalsByStatus[c.Status] = c.Count
	}

	// 已付款租賃的總營收
	if err := database.DB.Model(&models.Rental{}).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Select("COALESCE(SUM(total_cost), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	var recent []models.Rental
	if err := database.DB.Order("created_at DESC").Limit(10).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent rentals: %w", err)
	}
	stats.RecentRentals = make([]models.SimpleRentalResponse, len(recent))
	for i, rental := range recent {
		stats.RecentRentals[i] = rental.ToSimpleResponse()
	}

	log.Printf("Dashboard stats computed: %d users, %d vehicles, revenue %.2f",
		stats.TotalUsers, stats.TotalVehicles, stats.TotalRevenue)
	return stats, nil
}

// exportRows 撈出匯出資料
func exportRows() ([]RentalExportRow, error) {
	var rentals []models.Rental
	if err := database.DB.Preload("User").Preload("Vehicle").
		Order("rental_id ASC").
		Find(&rentals).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch rentals for export: %w", err)
	}

	rows := make([]RentalExportRow, len(rentals))
	for i, rental := range rentals {
		rows[i] = RentalExportRow{
			RentalID:      rental.RentalID,
			UserEmail:     rental.User.Email,
			VehicleReg:    rental.Vehicle.RegistrationNumber,
			StartDate:     rental.StartDate.Format("2006-01-02"),
			EndDate:       rental.EndDate.Format("2006-01-02"),
			Days:          rental.Days,
			TotalCost:     rental.TotalCost,
			Status:        rental.Status,
			PaymentStatus: rental.PaymentStatus,
		}
	}
	return rows, nil
}

// ExportRentalsJSON 以 JSON 匯出所有租賃
func ExportRentalsJSON() ([]RentalExportRow, error) {
	return exportRows()
}

// ExportRentalsCSV 以 CSV 匯出所有租賃
func ExportRentalsCSV(w io.Writer) error {
	rows, err := exportRows()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{"rental_id", "user_email", "vehicle_registration",
		"start_date", "end_date", "days", "total_cost", "status", "payment_status"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.RentalID),
			row.UserEmail,
			row.VehicleReg,
			row.StartDate,
			row.EndDate,
			strconv.Itoa(row.Days),
			strconv.FormatFloat(row.TotalCost, 'f', 2, 64),
			row.Status,
			row.PaymentStatus,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	log.Printf("Exported %d rentals to CSV at %s", len(rows), time.Now().Format(time.RFC3339))
	return nil
}
