package services

import (
	"errors"
	"fmt"
	"log"

	"autohive/database"
	"autohive/models"

	"gorm.io/gorm"
)

// ReviewEligibility 評論資格：需有一筆已完成且尚未評論的租賃
type ReviewEligibility struct {
	Eligible bool `json:"eligible"`
	RentalID int  `json:"rental_id,omitempty"`
}

// PlatformReviewStats 平台評論統計
type PlatformReviewStats struct {
	TotalReviews  int64   `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	FiveStarCount int64   `json:"five_star_count"`
}

// CheckReviewEligibility 查詢會員對某車輛是否可評論
func CheckReviewEligibility(userID, vehicleID int) (ReviewEligibility, error) {
	var rentals []models.Rental
	if err := database.DB.
		Where("user_id = ? AND vehicle_id = ? AND status = ?", userID, vehicleID, models.RentalStatusCompleted).
		Find(&rentals).Error; err != nil {
		return ReviewEligibility{}, fmt.Errorf("failed to query completed rentals: %w", err)
	}

	for _, rental := range rentals {
		var count int64
		if err := database.DB.Model(&models.Review{}).
			Where("rental_id = ?", rental.RentalID).
			Count(&count).Error; err != nil {
			return ReviewEligibility{}, fmt.Errorf("failed to check existing review: %w", err)
		}
		if count == 0 {
			return ReviewEligibility{Eligible: true, RentalID: rental.RentalID}, nil
		}
	}
	return ReviewEligibility{Eligible: false}, nil
}

// CreateReview 建立評論。每筆已完成租賃最多一則
func CreateReview(userID, vehicleID, rentalID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	var rental models.Rental
	if err := database.DB.First(&rental, rentalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rental %d not found", ErrNotFound, rentalID)
		}
		return nil, fmt.Errorf("failed to find rental %d: %w", rentalID, err)
	}

	if rental.UserID != userID {
		return nil, fmt.Errorf("%w: you can only review your own rentals", ErrForbidden)
	}
	if rental.VehicleID != vehicleID {
		return nil, fmt.Errorf("%w: rental %d is not for vehicle %d", ErrValidation, rentalID, vehicleID)
	}
	if rental.Status != models.RentalStatusCompleted {
		return nil, fmt.Errorf("%w: only completed rentals can be reviewed", ErrValidation)
	}

	var count int64
	if err := database.DB.Model(&models.Review{}).
		Where("rental_id = ?", rentalID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: rental %d has already been reviewed", ErrConflict, rentalID)
	}

	review := &models.Review{
		UserID:    userID,
		VehicleID: vehicleID,
		RentalID:  &rentalID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := database.DB.Create(review).Error; err != nil {
		// rental_id 唯一索引攔截併發重複評論
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: rental %d has already been reviewed", ErrConflict, rentalID)
		}
		log.Printf("Failed to create review: %v", err)
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	log.Printf("Successfully created review %d for vehicle %d by user %d", review.ReviewID, vehicleID, userID)
	return review, nil
}

// GetReviewsByVehicle 查詢車輛的所有評論
func GetReviewsByVehicle(vehicleID int) ([]models.Review, error) {
	var reviews []models.Review
	if err := database.DB.Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews for vehicle %d: %w", vehicleID, err)
	}
	return reviews, nil
}

// GetReviewsByUser 查詢會員的所有評論
func GetReviewsByUser(userID int) ([]models.Review, error) {
	var reviews []models.Review
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews for user %d: %w", userID, err)
	}
	return reviews, nil
}

// UpdateReview 更新評論內容，僅限本人
func UpdateReview(reviewID, userID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	var review models.Review
	if err := database.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d not found", ErrNotFound, reviewID)
		}
		return nil, fmt.Errorf("failed to find review %d: %w", reviewID, err)
	}

	if review.UserID != userID {
		return nil, fmt.Errorf("%w: you can only update your own reviews", ErrForbidden)
	}

	review.Rating = rating
	review.Comment = comment
	if err := database.DB.Save(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to update review %d: %w", reviewID, err)
	}

	log.Printf("Successfully updated review %d", reviewID)
	return &review, nil
}

// DeleteReview 刪除評論，本人或管理員
func DeleteReview(reviewID, userID int, role string) error {
	var review models.Review
	if err := database.DB.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: review %d not found", ErrNotFound, reviewID)
		}
		return fmt.Errorf("failed to find review %d: %w", reviewID, err)
	}

	if role != "admin" && review.UserID != userID {
		return fmt.Errorf("%w: you can only delete your own reviews", ErrForbidden)
	}

	if err := database.DB.Delete(&review).Error; err != nil {
		return fmt.Errorf("failed to delete review %d: %w", reviewID, err)
	}

	log.Printf("Successfully deleted review %d", reviewID)
	return nil
}

// GetPlatformReviewStats 平台評論統計
func GetPlatformReviewStats() (PlatformReviewStats, error) {
	var stats PlatformReviewStats

	if err := database.DB.Model(&models.Review{}).Count(&stats.TotalReviews).Error; err != nil {
		return stats, fmt.Errorf("failed to count reviews: %w", err)
	}
	if stats.TotalReviews == 0 {
		return stats, nil
	}

	if err := database.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&stats.AverageRating).Error; err != nil {
		return stats, fmt.Errorf("failed to compute average rating: %w", err)
	}
	if err := database.DB.Model(&models.Review{}).
		Where("rating = ?", 5).
		Count(&stats.FiveStarCount).Error; err != nil {
		return stats, fmt.Errorf("failed to count five-star reviews: %w", err)
	}

	return stats, nil
}
