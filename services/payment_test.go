package services

import (
	"testing"

	"autohive/models"

	"github.com/stretchr/testify/require"
)

func TestSimulateCapture_ValidMethods(t *testing.T) {
	txn, err := simulateCapture("credit_card", 330)
	require.NoError(t, err)
	require.NotEmpty(t, txn)

	txn2, err := simulateCapture("e_wallet", 99.5)
	require.NoError(t, err)
	require.NotEmpty(t, txn2)

	// 每次扣款的交易編號都不同
	require.NotEqual(t, txn, txn2)
}

func TestSimulateCapture_Invalid(t *testing.T) {
	_, err := simulateCapture("cash", 100)
	require.Error(t, err)

	_, err = simulateCapture("credit_card", 0)
	require.Error(t, err)

	_, err = simulateCapture("credit_card", -50)
	require.Error(t, err)
}

func TestFailedCaptureRow(t *testing.T) {
	row := failedCaptureRow(7, "cash", 330)

	require.Equal(t, 7, row.RentalID)
	require.Equal(t, "cash", row.Method)
	require.Equal(t, 330.0, row.Amount)
	require.Equal(t, models.PaymentRowStatusFailed, row.Status)
	require.NotEmpty(t, row.TransactionID)
	require.Nil(t, row.RefundOf)

	// 每列都有獨立的交易編號
	require.NotEqual(t, row.TransactionID, failedCaptureRow(7, "cash", 330).TransactionID)
}

func TestRefundable(t *testing.T) {
	capture := &models.Payment{
		PaymentID: 1,
		RentalID:  7,
		Amount:    330,
		Status:    models.PaymentRowStatusSuccessful,
	}
	require.NoError(t, refundable(capture))

	// 已退款的扣款列不可重複退款
	refunded := &models.Payment{PaymentID: 1, Amount: 330, Status: models.PaymentRowStatusRefunded}
	require.ErrorIs(t, refundable(refunded), ErrInvalidTransition)

	// 退款列本身（負數金額、refund_of 指向原始扣款）不可再退
	originalID := 1
	refundRow := &models.Payment{
		PaymentID: 2,
		RentalID:  7,
		Amount:    -330,
		Status:    models.PaymentRowStatusSuccessful,
		RefundOf:  &originalID,
	}
	require.ErrorIs(t, refundable(refundRow), ErrInvalidTransition)

	// 失敗與待處理的扣款列不可退款
	failed := &models.Payment{PaymentID: 3, Amount: 330, Status: models.PaymentRowStatusFailed}
	require.ErrorIs(t, refundable(failed), ErrInvalidTransition)
	pending := &models.Payment{PaymentID: 4, Amount: 330, Status: models.PaymentRowStatusPending}
	require.ErrorIs(t, refundable(pending), ErrInvalidTransition)

	// 零元列一律拒絕
	zero := &models.Payment{PaymentID: 5, Amount: 0, Status: models.PaymentRowStatusSuccessful}
	require.ErrorIs(t, refundable(zero), ErrInvalidTransition)
}
