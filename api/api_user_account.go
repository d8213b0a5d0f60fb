package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/walletsign/go-walletsign-server/services"
	"github.com/walletsign/go-walletsign-server/types"
)

type UserAccountApi struct {
	userService *services.UserService
	validate    *validator.Validate
}

func NewUserAccountApi(userService *services.UserService) *UserAccountApi {
	return &UserAccountApi{
		userService: userService,
		validate:    validator.New(),
	}
}

// Register an identity
// @Summary Register an identity
// @Description Binds an email address to a wallet. The binding is immutable.
// @Tags User Account
// @Param request body types.InputRegister true "identity pair"
// @Success 201 {object} types.OutputOk
// @Failure 400 {object} api.ApiError "invalid email or wallet address"
// @Failure 409 {object} api.ApiError "email already registered"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Accept json
// @Produce json
// @Router /register [post]
func (ua *UserAccountApi) Register(c *gin.Context) {
	var input types.InputRegister
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if vErr := ua.validate.Struct(input); vErr != nil {
		msg := ValidatorErrorToUser(vErr.(validator.ValidationErrors))
		ApiErrorf(c, http.StatusBadRequest, msg)
		return
	}

	_, err := ua.userService.Register(input.Email, input.WalletAddress)
	if err != nil {
		switch err {
		case types.ErrInvalidEmail:
			ApiErrorf(c, http.StatusBadRequest, "invalid email address")
		case types.ErrInvalidWalletAddress:
			ApiErrorf(c, http.StatusBadRequest, "invalid wallet address")
		case types.ErrUserExists:
			ApiErrorf(c, http.StatusConflict, "email is already registered")
		default:
			ApiErrorf(c, http.StatusInternalServerError, "failed to register")
		}
		return
	}
	c.JSON(http.StatusCreated, types.OutputOk{Ok: true})
}

// Check an email binding
// @Summary Check an email binding
// @Description Reports whether the email is registered and whether the wallet matches its binding
// @Tags User Account
// @Param request body types.InputRegister true "identity pair"
// @Success 200 {object} types.OutputEmailCheck
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "Internal server error"
// @Accept json
// @Produce json
// @Router /email-check [post]
func (ua *UserAccountApi) EmailCheck(c *gin.Context) {
	var input types.InputRegister
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if vErr := ua.validate.Struct(input); vErr != nil {
		msg := ValidatorErrorToUser(vErr.(validator.ValidationErrors))
		ApiErrorf(c, http.StatusBadRequest, msg)
		return
	}

	found, match, expected, err := ua.userService.CheckBinding(input.Email, input.WalletAddress)
	if err != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to check email")
		return
	}
	out := types.OutputEmailCheck{Ok: true, Found: found, Match: match}
	if found && !match {
		out.ExpectedWallet = expected
	}
	c.JSON(http.StatusOK, out)
}
