package apiroutes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/walletsign/go-walletsign-server/api"
	"github.com/walletsign/go-walletsign-server/api/interceptors"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/metrics"
	"github.com/walletsign/go-walletsign-server/repository"
	"github.com/walletsign/go-walletsign-server/services"
	"github.com/walletsign/go-walletsign-server/types"
)

// REST API routes
func ConfigRoutes(router *gin.Engine, dbSelector repository.DBSelector, env *types.Environment) *gin.Engine {
	// init metrics
	if global.Conf.Prometheus.Enabled {
		metrics.InitMetrics()

		authorized := router.Group("/metrics", gin.BasicAuth(gin.Accounts{
			global.Conf.Prometheus.Username: global.Conf.Prometheus.Password,
		}))

		authorized.GET("", gin.WrapH(promhttp.Handler()))
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// SERVICE definitions
	userService := services.NewUserService(dbSelector)
	otpService := services.NewOtpService(dbSelector)
	sessionService := services.NewSessionService()
	s3Service := services.NewS3Service(env)
	documentService := services.NewDocumentService(dbSelector, s3Service)
	signatureService := services.NewSignatureService(dbSelector)

	// API definitions
	accountApi := api.NewUserAccountApi(userService)
	otpApi := api.NewOtpApi(otpService, sessionService)
	sessionApi := api.NewSessionApi(sessionService)
	documentApi := api.NewDocumentApi(documentService, signatureService)

	// PUBLIC API
	publicApi := router.Group("/", metrics.MetricsMiddleware(), interceptors.RateLimitMiddleware())
	{
		publicApi.POST("/register", accountApi.Register)
		publicApi.POST("/email-check", accountApi.EmailCheck)
		publicApi.POST("/otp/request", otpApi.RequestOtp)
		publicApi.POST("/otp/verify", otpApi.VerifyOtp)
		publicApi.GET("/session/validate", sessionApi.ValidateSession)
	}

	// SESSION GUARDED API
	documentsApi := router.Group("/documents", metrics.MetricsMiddleware(), interceptors.RateLimitMiddleware(), interceptors.SessionMiddleware(sessionService))
	{
		documentsApi.POST("", documentApi.UploadDocument)
		documentsApi.GET("", documentApi.ListDocuments)
		documentsApi.DELETE("/:id", documentApi.DeleteDocument)
		documentsApi.GET("/:id/meta", documentApi.DocumentMeta)
		documentsApi.GET("/:id/view", documentApi.ViewDocument)
		documentsApi.GET("/:id/download", documentApi.DownloadDocument)
		documentsApi.POST("/:id/decision", documentApi.RecordDecision)
	}

	return router
}
