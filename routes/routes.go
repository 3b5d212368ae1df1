package routes

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"

	"autohive/handlers"
	"autohive/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 驗證失敗的哨兵，各自對應一個回應碼
var (
	errNoAuthHeader  = errors.New("Authorization header is required")
	errBadAuthFormat = errors.New("Authorization header must be in the format 'Bearer <token>'")
	errTokenExpired  = errors.New("token has expired")
	errBadClaims     = errors.New("invalid token claims")
)

// authenticate 解析 Bearer token 並驗證 claims，回傳會員 ID 與角色
func authenticate(authHeader string) (int, string, error) {
	if authHeader == "" {
		return 0, "", errNoAuthHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, "", errBadAuthFormat
	}

	// 明確要求檢查 exp 字段
	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return utils.JWTSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, "", errTokenExpired
		}
		return 0, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", errBadClaims
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("%w: missing or invalid user_id", errBadClaims)
	}

	role, ok := claims["role"].(string)
	if !ok || (role != "user" && role != "admin") {
		return 0, "", fmt.Errorf("%w: missing or unknown role", errBadClaims)
	}

	return int(userID), role, nil
}

// abortAuth 以統一回應格式中止請求
func abortAuth(c *gin.Context, statusCode int, message, errMsg, code string) {
	c.AbortWithStatusJSON(statusCode, handlers.APIResponse{
		Status:  false,
		Message: message,
		Error:   errMsg,
		Code:    code,
	})
}

// AuthMiddleware 驗證 JWT token，並將 user_id 和 role 存入上下文
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := authenticate(c.GetHeader("Authorization"))
		if err != nil {
			log.Printf("Authentication failed: %v", err)
			switch {
			case errors.Is(err, errNoAuthHeader):
				abortAuth(c, http.StatusUnauthorized, "缺少 Authorization 標頭", err.Error(), "ERR_NO_AUTH_HEADER")
			case errors.Is(err, errBadAuthFormat):
				abortAuth(c, http.StatusUnauthorized, "無效的 Authorization 格式", err.Error(), "ERR_INVALID_AUTH_FORMAT")
			case errors.Is(err, errTokenExpired):
				abortAuth(c, http.StatusUnauthorized, "token 已過期", err.Error(), "ERR_TOKEN_EXPIRED")
			case errors.Is(err, errBadClaims):
				abortAuth(c, http.StatusUnauthorized, "無效的 token 內容", err.Error(), "ERR_INVALID_CLAIMS")
			default:
				abortAuth(c, http.StatusUnauthorized, "無效的 token", err.Error(), "ERR_INVALID_TOKEN")
			}
			return
		}

		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

// RoleMiddleware 檢查會員角色是否符合要求，admin 放行所有端點
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			abortAuth(c, http.StatusUnauthorized, "無法獲取角色資訊", "role not found in context", "ERR_ROLE_NOT_FOUND")
			return
		}

		if role != "admin" && !slices.Contains(allowedRoles, role) {
			abortAuth(c, http.StatusForbidden, "權限不足", "insufficient role permissions", "ERR_INSUFFICIENT_PERMISSIONS")
			return
		}

		c.Next()
	}
}

func Path(router *gin.RouterGroup) {
	// 健康檢查不需要驗證
	router.GET("/health", handlers.HealthCheck)

	// 版本控制
	v1 := router.Group("/v1")
	{
		// 測試路由
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})

		// 認證與個人資料路由
		auth := v1.Group("/auth")
		{
			// 公開路由：不需要 token 驗證
			auth.POST("/register", handlers.RegisterUser)          // 註冊會員
			auth.POST("/login", handlers.LoginUser)                // 登入會員並獲取 token
			auth.POST("/forgot-password", handlers.ForgotPassword) // 申請密碼重設
			auth.POST("/reset-password", handlers.ResetPassword)   // 以 token 重設密碼

			// 受保護路由：需要 token 驗證
			authWithToken := auth.Group("")
			authWithToken.Use(AuthMiddleware())
			{
				authWithToken.POST("/logout", handlers.LogoutUser)             // 登出
				authWithToken.GET("/profile", handlers.GetProfile)             // 查看個人資料
				authWithToken.PUT("/profile", handlers.UpdateProfile)          // 更新個人資料
				authWithToken.PUT("/change-password", handlers.ChangePassword) // 變更密碼
			}
		}

		// 車輛路由
		vehicles := v1.Group("/vehicles")
		{
			// 公開路由：瀏覽車輛不需要 token 驗證
			vehicles.GET("", handlers.ListVehicles)                              // 查詢車輛列表
			vehicles.GET("/:id", handlers.GetVehicle)                            // 查詢特定車輛
			vehicles.GET("/:id/availability", handlers.CheckVehicleAvailability) // 查詢日期區間可用性
			vehicles.GET("/:id/reviews", handlers.GetVehicleReviews)             // 查詢車輛評論

			// 管理員專屬路由
			vehiclesWithAuth := vehicles.Group("")
			vehiclesWithAuth.Use(AuthMiddleware())
			{
				vehiclesWithAuth.POST("", RoleMiddleware("admin"), handlers.CreateVehicle)                          // 新增車輛
				vehiclesWithAuth.PUT("/:id", RoleMiddleware("admin"), handlers.UpdateVehicle)                       // 更新車輛
				vehiclesWithAuth.PUT("/:id/availability", RoleMiddleware("admin"), handlers.SetVehicleAvailability) // 上下架車輛
				vehiclesWithAuth.POST("/:id/image", RoleMiddleware("admin"), handlers.UploadVehicleImage)           // 上傳車輛圖片
				vehiclesWithAuth.DELETE("/:id", RoleMiddleware("admin"), handlers.DeleteVehicle)                    // 刪除車輛
			}
		}

		// 租賃路由
		rentals := v1.Group("/rentals")
		{
			// 受保護路由：需要 token 驗證
			rentalsWithAuth := rentals.Group("")
			rentalsWithAuth.Use(AuthMiddleware())
			{
				rentalsWithAuth.POST("", RoleMiddleware("user"), handlers.CreateRental)                  // 建立租賃
				rentalsWithAuth.GET("", RoleMiddleware("user"), handlers.GetMyRentals)                   // 查詢自己的租賃紀錄
				rentalsWithAuth.GET("/:id", RoleMiddleware("user"), handlers.GetRentalByID)              // 查詢特定租賃記錄
				rentalsWithAuth.GET("/:id/payments", RoleMiddleware("user"), handlers.GetRentalPayments) // 查詢租賃的付款紀錄
				rentalsWithAuth.POST("/:id/cancel", RoleMiddleware("user"), handlers.CancelRental)       // 取消租賃
				rentalsWithAuth.POST("/:id/payment", RoleMiddleware("user"), handlers.ProcessPayment)    // 付款
				rentalsWithAuth.POST("/:id/extend", RoleMiddleware("user"), handlers.ExtendRental)       // 延長租期
				rentalsWithAuth.POST("/:id/refund", RoleMiddleware("admin"), handlers.RefundPayment)     // 退款（管理員）
			}
		}

		// 評論路由
		reviews := v1.Group("/reviews")
		{
			// 公開路由：平台統計與車輛評論不需要 token 驗證
			reviews.GET("/stats", handlers.GetPlatformReviewStats)
			reviews.GET("/vehicle/:id", handlers.GetVehicleReviews)

			// 受保護路由：需要 token 驗證
			reviewsWithAuth := reviews.Group("")
			reviewsWithAuth.Use(AuthMiddleware())
			{
				reviewsWithAuth.POST("", RoleMiddleware("user"), handlers.CreateReview)                      // 建立評論
				reviewsWithAuth.GET("/my", RoleMiddleware("user"), handlers.GetMyReviews)                    // 查詢自己的評論
				reviewsWithAuth.GET("/user/:id", RoleMiddleware("user"), handlers.GetUserReviews)            // 查詢特定會員的評論
				reviewsWithAuth.GET("/eligibility", RoleMiddleware("user"), handlers.CheckReviewEligibility) // 查詢評論資格
				reviewsWithAuth.PUT("/:id", RoleMiddleware("user"), handlers.UpdateReview)                   // 更新評論
				reviewsWithAuth.DELETE("/:id", RoleMiddleware("user"), handlers.DeleteReview)                // 刪除評論
			}
		}

		// 管理員路由
		admin := v1.Group("/admin")
		admin.Use(AuthMiddleware(), RoleMiddleware("admin"))
		{
			admin.GET("/dashboard", handlers.GetDashboard)                // 後台總覽
			admin.GET("/rentals", handlers.GetAllRentals)                 // 查詢所有租賃紀錄
			admin.PUT("/rentals/:id/status", handlers.UpdateRentalStatus) // 更新租賃狀態
			admin.GET("/export/rentals", handlers.ExportRentals)          // 匯出租賃紀錄
			admin.GET("/users", handlers.GetAllUsers)                     // 查詢所有會員
			admin.GET("/users/:id", handlers.GetUser)                     // 查詢特定會員
			admin.PUT("/users/:id/active", handlers.SetUserActive)        // 停用/啟用會員
			admin.DELETE("/users/:id", handlers.DeleteUser)               // 刪除會員
		}
	}
}
