package services

import (
	"errors"
	"fmt"
	"log"
	"math"

	"autohive/database"
	"autohive/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// simulateCapture 模擬金流扣款，本系統不串接外部金流
func simulateCapture(method string, amount float64) (string, error) {
	if method != "credit_card" && method != "e_wallet" {
		return "", fmt.Errorf("unsupported payment method: %s", method)
	}
	if amount <= 0 {
		return "", fmt.Errorf("invalid capture amount: %.2f", amount)
	}
	return uuid.NewString(), nil
}

// failedCaptureRow 產生扣款失敗的付款列。失敗列必須在確認事務之外寫入，
// 否則會隨事務回滾一併消失
func failedCaptureRow(rentalID int, method string, amount float64) *models.Payment {
	return &models.Payment{
		RentalID:      rentalID,
		Amount:        amount,
		Method:        method,
		Status:        models.PaymentRowStatusFailed,
		TransactionID: uuid.NewString(),
	}
}

// CapturePayment 扣款並確認租賃。付款列與租賃狀態在同一事務內更新，任一步失敗即回滾；
// 扣款失敗列於事務外落盤，租賃維持 pending
func CapturePayment(rentalID int, method string, amount float64, currentUserID int, role string) (*models.Payment, error) {
	var payment *models.Payment
	var failed *models.Payment

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var rental models.Rental
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rental, rentalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: rental %d not found", ErrNotFound, rentalID)
			}
			return fmt.Errorf("failed to lock rental %d: %w", rentalID, err)
		}

		if role != "admin" && rental.UserID != currentUserID {
			return fmt.Errorf("%w: you can only pay for your own rentals", ErrForbidden)
		}

		if rental.PaymentStatus == models.PaymentStatusPaid {
			return fmt.Errorf("%w: rental %d", ErrAlreadyPaid, rentalID)
		}

		if rental.Status != models.RentalStatusPending {
			return fmt.Errorf("%w: cannot pay rental %d with status %s",
				ErrInvalidTransition, rentalID, rental.Status)
		}

		if math.Abs(amount-rental.TotalCost) > 0.009 {
			return fmt.Errorf("%w: amount %.2f does not match rental total %.2f",
				ErrValidation, amount, rental.TotalCost)
		}

		transactionID, captureErr := simulateCapture(method, amount)
		if captureErr != nil {
			failed = failedCaptureRow(rentalID, method, amount)
			return fmt.Errorf("%w: payment capture failed: %v", ErrValidation, captureErr)
		}

		payment = &models.Payment{
			RentalID:      rentalID,
			Amount:        amount,
			Method:        method,
			Status:        models.PaymentRowStatusSuccessful,
			TransactionID: transactionID,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		rental.Status = models.RentalStatusConfirmed
		rental.PaymentStatus = models.PaymentStatusPaid
		if err := tx.Save(&rental).Error; err != nil {
			return fmt.Errorf("failed to update rental %d payment status: %w", rentalID, err)
		}
		return nil
	})
	if err != nil {
		// 失敗列在事務回滾後獨立寫入，保留完整的金流軌跡
		if failed != nil {
			if createErr := database.DB.Create(failed).Error; createErr != nil {
				log.Printf("Failed to record failed payment for rental %d: %v", rentalID, createErr)
			}
		}
		return nil, err
	}

	log.Printf("Successfully captured payment %d for rental %d (amount %.2f, txn %s)",
		payment.PaymentID, rentalID, amount, payment.TransactionID)
	return payment, nil
}

// refundable 檢查付款列是否可退款：僅限成功的正數扣款列，退款列本身不得再退
func refundable(p *models.Payment) error {
	if p.RefundOf != nil || p.Amount <= 0 {
		return fmt.Errorf("%w: payment %d is a refund row and cannot be refunded",
			ErrInvalidTransition, p.PaymentID)
	}
	if p.Status != models.PaymentRowStatusSuccessful {
		return fmt.Errorf("%w: payment %d is %s, only successful payments can be refunded",
			ErrInvalidTransition, p.PaymentID, p.Status)
	}
	return nil
}

// RefundPayment 退款：新增負數金額付款列、標記原付款列為 refunded、更新租賃付款狀態，三者同一事務
func RefundPayment(paymentID int, reason string) (*models.Payment, error) {
	var refund *models.Payment

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var original models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&original, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %d not found", ErrNotFound, paymentID)
			}
			return fmt.Errorf("failed to lock payment %d: %w", paymentID, err)
		}

		if err := refundable(&original); err != nil {
			return err
		}

		var rental models.Rental
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rental, original.RentalID).Error; err != nil {
			return fmt.Errorf("failed to lock rental %d: %w", original.RentalID, err)
		}

		originalID := original.PaymentID
		refund = &models.Payment{
			RentalID:      original.RentalID,
			Amount:        -original.Amount,
			Method:        original.Method,
			Status:        models.PaymentRowStatusSuccessful,
			TransactionID: uuid.NewString(),
			RefundOf:      &originalID,
		}
		if err := tx.Create(refund).Error; err != nil {
			return fmt.Errorf("failed to create refund payment: %w", err)
		}

		original.Status = models.PaymentRowStatusRefunded
		if err := tx.Save(&original).Error; err != nil {
			return fmt.Errorf("failed to mark payment %d as refunded: %w", paymentID, err)
		}

		rental.PaymentStatus = models.PaymentStatusRefunded
		if err := tx.Save(&rental).Error; err != nil {
			return fmt.Errorf("failed to update rental %d payment status: %w", rental.RentalID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully refunded payment %d (refund %d, reason: %s)",
		paymentID, refund.PaymentID, reason)
	return refund, nil
}

// RefundRentalPayment 退還租賃的成功付款列（管理員入口以租賃為單位）
func RefundRentalPayment(rentalID int, reason string) (*models.Payment, error) {
	var payment models.Payment
	if err := database.DB.
		Where("rental_id = ? AND status = ? AND refund_of IS NULL AND amount > 0",
			rentalID, models.PaymentRowStatusSuccessful).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no refundable payment for rental %d", ErrNotFound, rentalID)
		}
		return nil, fmt.Errorf("failed to find payment for rental %d: %w", rentalID, err)
	}
	return RefundPayment(payment.PaymentID, reason)
}

// GetPaymentsByRental 查詢租賃的所有付款列
func GetPaymentsByRental(rentalID int) ([]models.Payment, error) {
	var payments []models.Payment
	if err := database.DB.Where("rental_id = ?", rentalID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to get payments for rental %d: %w", rentalID, err)
	}
	return payments, nil
}
