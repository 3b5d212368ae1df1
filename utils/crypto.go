package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// paymentCipher 啟動時由 InitCrypto 建立，之後所有加解密共用同一個 AEAD
var paymentCipher cipher.AEAD

// HashPassword 使用 bcrypt 哈希密碼
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash 驗證密碼是否與哈希匹配
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// InitCrypto 讀取 AES_KEY 並建立付款資訊加解密用的 AES-GCM，啟動時呼叫一次
func InitCrypto() error {
	key := []byte(os.Getenv("AES_KEY"))
	if len(key) == 0 {
		return errors.New("AES_KEY environment variable is not set")
	}
	if len(key) != 32 {
		return fmt.Errorf("AES_KEY must be 32 bytes long, got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	paymentCipher = gcm
	return nil
}

// EncryptPaymentInfo 加密會員的付款資訊，每次加密使用隨機 nonce
func EncryptPaymentInfo(plainText string) (string, error) {
	if paymentCipher == nil {
		return "", errors.New("crypto is not initialized, call InitCrypto first")
	}

	nonce := make([]byte, paymentCipher.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := paymentCipher.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptPaymentInfo 解密會員的付款資訊
func DecryptPaymentInfo(cipherText string) (string, error) {
	if paymentCipher == nil {
		return "", errors.New("crypto is not initialized, call InitCrypto first")
	}

	data, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", fmt.Errorf("failed to decode payment info: %w", err)
	}

	nonceSize := paymentCipher.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	plainText, err := paymentCipher.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt payment info: %w", err)
	}
	return string(plainText), nil
}
