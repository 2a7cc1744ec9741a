package public

import (
	"errors"

	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/http/handlers/shared"
	"github.com/campusbooks/internal/http/response"
	"github.com/campusbooks/internal/i18n"
	"github.com/campusbooks/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target   error
	code     int
	key      string
	redirect string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			shared.RespondErrorWithRedirect(c, rule.code, rule.key, rule.redirect, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var sessionErrorRules = []mappedHandlerError{
	{target: service.ErrAuthRequired, code: response.CodeUnauthorized, key: "error.unauthorized", redirect: constants.RedirectLogin},
}

var juniorErrorRules = concatMappedHandlerErrors(sessionErrorRules, []mappedHandlerError{
	{target: service.ErrRoleDenied, code: response.CodeForbidden, key: "error.role_denied_junior", redirect: constants.RedirectHome},
})

var seniorErrorRules = concatMappedHandlerErrors(sessionErrorRules, []mappedHandlerError{
	{target: service.ErrRoleDenied, code: response.CodeForbidden, key: "error.role_denied_senior", redirect: constants.RedirectHome},
})

var cartErrorRules = concatMappedHandlerErrors(juniorErrorRules, []mappedHandlerError{
	{target: service.ErrAlreadyInCart, code: response.CodeBadRequest, key: "error.already_in_cart"},
	{target: service.ErrCartItemInvalid, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrBookNotFound, code: response.CodeNotFound, key: "error.book_not_found"},
	{target: service.ErrBookUnavailable, code: response.CodeBadRequest, key: "error.book_unavailable"},
	{target: service.ErrOwnBookInCart, code: response.CodeBadRequest, key: "error.own_book"},
})

var checkoutErrorRules = concatMappedHandlerErrors(juniorErrorRules, []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty", redirect: constants.RedirectCart},
	{target: service.ErrDeliveryLocationRequired, code: response.CodeBadRequest, key: "error.delivery_location_required"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, key: "error.payment_method_invalid"},
	{target: service.ErrIdempotencyKeyInvalid, code: response.CodeBadRequest, key: "error.idempotency_key_invalid"},
	{target: service.ErrIdempotencyConflict, code: response.CodeConflict, key: "error.idempotency_conflict"},
	{target: service.ErrBookUnavailable, code: response.CodeBadRequest, key: "error.book_unavailable", redirect: constants.RedirectCart},
	{target: service.ErrOwnBookInCart, code: response.CodeBadRequest, key: "error.own_book", redirect: constants.RedirectCart},
})

var orderErrorRules = concatMappedHandlerErrors(juniorErrorRules, []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, key: "error.order_status_invalid"},
})

var sellerOrderErrorRules = concatMappedHandlerErrors(seniorErrorRules, []mappedHandlerError{
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, key: "error.order_status_invalid"},
})

var sellerBookErrorRules = concatMappedHandlerErrors(seniorErrorRules, []mappedHandlerError{
	{target: service.ErrBookNotFound, code: response.CodeNotFound, key: "error.book_not_found"},
	{target: service.ErrBookNotOwner, code: response.CodeForbidden, key: "error.book_not_owner"},
	{target: service.ErrBookInvalid, code: response.CodeBadRequest, key: "error.book_invalid"},
	{target: service.ErrBookConditionInvalid, code: response.CodeBadRequest, key: "error.book_condition_invalid"},
	{target: service.ErrBookPriceInvalid, code: response.CodeBadRequest, key: "error.book_price_invalid"},
	{target: service.ErrSellingPriceTooHigh, code: response.CodeBadRequest, key: "error.book_selling_price_high"},
})

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrEmailExists, code: response.CodeBadRequest, key: "error.email_exists"},
	{target: service.ErrRoleInvalid, code: response.CodeBadRequest, key: "error.role_invalid"},
	{target: service.ErrFullNameEmpty, code: response.CodeBadRequest, key: "error.full_name_required"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.invalid_credentials"},
}

var profileErrorRules = concatMappedHandlerErrors(sessionErrorRules, []mappedHandlerError{
	{target: service.ErrProfileNotFound, code: response.CodeNotFound, key: "error.profile_not_found"},
	{target: service.ErrFullNameEmpty, code: response.CodeBadRequest, key: "error.full_name_required"},
})

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_save_failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.order_create_failed")
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.internal")
}

func respondSellerOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, sellerOrderErrorRules, response.CodeInternal, "error.internal")
}

func respondSellerBookError(c *gin.Context, err error) {
	respondWithMappedError(c, err, sellerBookErrorRules, response.CodeInternal, "error.internal")
}

func respondProfileError(c *gin.Context, err error) {
	respondWithMappedError(c, err, profileErrorRules, response.CodeInternal, "error.internal")
}

// respondAuthError 密码策略错误携带参数，需单独格式化
func respondAuthError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrWeakPassword) {
		locale := i18n.ResolveLocale(c)
		if perr, ok := err.(interface {
			Key() string
			Args() []interface{}
		}); ok {
			respondErrorWithMsg(c, response.CodeBadRequest, i18n.Sprintf(locale, perr.Key(), perr.Args()...), nil)
			return
		}
		respondError(c, response.CodeBadRequest, "error.password_weak", nil)
		return
	}
	respondWithMappedError(c, err, authErrorRules, response.CodeInternal, "error.internal")
}
