package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/walletsign/go-walletsign-server/metrics"
	"github.com/walletsign/go-walletsign-server/services"
	"github.com/walletsign/go-walletsign-server/types"
	"github.com/walletsign/go-walletsign-server/util"
)

type OtpApi struct {
	otpService     *services.OtpService
	sessionService *services.SessionService
	validate       *validator.Validate
}

func NewOtpApi(otpService *services.OtpService, sessionService *services.SessionService) *OtpApi {
	return &OtpApi{
		otpService:     otpService,
		sessionService: sessionService,
		validate:       validator.New(),
	}
}

// Request a one-time passcode
// @Summary Request a one-time passcode
// @Description Emails a fresh verification code to the registered address of the (email, wallet) pair
// @Tags Otp
// @Param request body types.InputOtpRequest true "identity pair"
// @Success 200 {object} types.OutputOk
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 404 {object} api.ApiError "identity and wallet do not match a registered binding"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Accept json
// @Produce json
// @Router /otp/request [post]
func (oa *OtpApi) RequestOtp(c *gin.Context) {
	var input types.InputOtpRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if vErr := oa.validate.Struct(input); vErr != nil {
		msg := ValidatorErrorToUser(vErr.(validator.ValidationErrors))
		ApiErrorf(c, http.StatusBadRequest, msg)
		return
	}
	if !util.IsValidWalletAddress(input.WalletAddress) {
		ApiErrorf(c, http.StatusBadRequest, "invalid wallet address")
		return
	}

	_, err := oa.otpService.RequestChallenge(input.Email, input.WalletAddress)
	if err != nil {
		switch err {
		case types.ErrNotFound:
			ApiErrorf(c, http.StatusNotFound, "identity and wallet do not match a registered binding")
		case types.ErrMisconfigured:
			ApiErrorf(c, http.StatusInternalServerError, "email delivery is not configured")
		default:
			ApiErrorf(c, http.StatusInternalServerError, "failed to deliver verification code")
		}
		return
	}
	metrics.OtpChallengesRequestedMetricsCount.Inc()
	c.JSON(http.StatusOK, types.OutputOk{Ok: true})
}

// Verify a one-time passcode
// @Summary Verify a one-time passcode
// @Description Exchanges a valid code for a signed session token
// @Tags Otp
// @Param request body types.InputOtpVerify true "identity pair and code"
// @Success 200 {object} types.OutputToken
// @Failure 400 {object} api.ApiError "invalid input, no active code or code expired"
// @Failure 401 {object} api.ApiError "invalid code"
// @Failure 429 {object} api.ApiError "too many attempts"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Accept json
// @Produce json
// @Router /otp/verify [post]
func (oa *OtpApi) VerifyOtp(c *gin.Context) {
	var input types.InputOtpVerify
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if vErr := oa.validate.Struct(input); vErr != nil {
		msg := ValidatorErrorToUser(vErr.(validator.ValidationErrors))
		ApiErrorf(c, http.StatusBadRequest, msg)
		return
	}

	vErr := oa.otpService.VerifyChallenge(input.Email, input.WalletAddress, input.Code)
	if vErr != nil {
		switch vErr {
		case types.ErrNoActiveCode:
			metrics.OtpVerificationsMetricsTotal.WithLabelValues("no_active_code").Inc()
			ApiErrorf(c, http.StatusBadRequest, "no active code for this identity")
		case types.ErrCodeExpired:
			metrics.OtpVerificationsMetricsTotal.WithLabelValues("expired").Inc()
			ApiErrorf(c, http.StatusBadRequest, "code expired")
		case types.ErrInvalidCode:
			metrics.OtpVerificationsMetricsTotal.WithLabelValues("invalid").Inc()
			ApiErrorf(c, http.StatusUnauthorized, "invalid code")
		case types.ErrTooManyAttempts:
			metrics.OtpVerificationsMetricsTotal.WithLabelValues("too_many_attempts").Inc()
			ApiErrorf(c, http.StatusTooManyRequests, "too many attempts, request a new code")
		default:
			ApiErrorf(c, http.StatusInternalServerError, "failed to verify code")
		}
		return
	}

	token, tErr := oa.sessionService.Issue(input.Email, input.WalletAddress)
	if tErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to issue session token")
		return
	}
	metrics.OtpVerificationsMetricsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, types.OutputToken{Ok: true, Token: token})
}
