package main

import (
	"log"
	"os"
	"time"

	"autohive/database"
	"autohive/handlers"
	"autohive/models"
	"autohive/routes"
	"autohive/services"
	"autohive/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// 載入 .env 檔案
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using default environment variables: %v", err)
	}

	// 調用 AES_KEY 是否加載成功
	if err := utils.InitCrypto(); err != nil {
		log.Fatalf("Failed to initialize crypto: %v", err)
	}
	log.Println("Crypto initialized successfully")

	// 初始化 JWTSecret
	utils.InitJWTSecret()

	// 初始化資料庫
	database.InitDB()

	// 初始化 Redis（上傳限流器使用）
	database.InitRedis()

	// 執行資料庫遷移
	database.DB.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Rental{},
		&models.Payment{},
		&models.Review{},
		&models.PasswordResetToken{},
	)
	log.Println("Database migration completed")

	// 確保預設管理員存在
	ensureAdminExists()

	// 上傳限流器：每位會員每小時 10 次
	handlers.SetUploadLimiter(services.NewRateLimiter(database.Redis, "upload", 10, time.Hour))

	// 設置 Gin 模式為 release
	gin.SetMode(gin.ReleaseMode)
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}
	gin.SetMode(ginMode)
	log.Printf("Gin mode set to %s", ginMode)

	// 初始化 Gin 路由器
	r := gin.Default()

	// 上傳的車輛圖片
	r.Static("/uploads", "./uploads")

	// 創建一個 API 路由組
	api := r.Group("/api")
	{
		routes.Path(api)
	}

	// 啟動定時任務
	c := cron.New()

	// 租賃狀態巡檢定時任務（每 5 分鐘執行一次）
	_, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("Running rental status sweep...")
		if err := services.ActivateDueRentals(); err != nil {
			log.Printf("Failed to activate due rentals: %v", err)
		}
		if err := services.CompleteExpiredRentals(); err != nil {
			log.Printf("Failed to complete expired rentals: %v", err)
		}
		if err := services.ExpireUnpaidRentals(); err != nil {
			log.Printf("Failed to expire unpaid rentals: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule rental status sweep cron job: %v", err)
	}

	// 清除過期的密碼重設 token（每小時執行一次）
	_, err = c.AddFunc("0 * * * *", func() {
		if err := services.PurgeExpiredResetTokens(); err != nil {
			log.Printf("Failed to purge expired reset tokens: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule reset token purge cron job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs started")

	// 啟動伺服器
	log.Println("Starting server on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists 檢查並創建預設管理員
func ensureAdminExists() {
	var admin models.User
	// 檢查是否已經有 admin 角色
	if err := database.DB.Where("role = ?", "admin").First(&admin).Error; err == nil {
		log.Printf("Admin already exists: email=%s", admin.Email)
		return
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@autohive.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin1234"
	}

	// 哈希密碼
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin = models.User{
		Name:          "Administrator",
		Email:         email,
		Phone:         "0000000000",
		Password:      hashedPassword,
		Role:          "admin",
		IsActive:      true,
		PaymentMethod: "credit_card",
	}

	// 插入資料庫
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}

	log.Printf("Default admin created: email=%s", admin.Email)
}
