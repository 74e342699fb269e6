package handler

import (
	"errors"
	"net/http"
	"reflect"

	"messpos/internal/apierror"
	"messpos/internal/cart"
	"messpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string parameters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps domain errors to HTTP statuses. Anything unknown is
// attached to the context and becomes a generic 500 in ErrorHandler.
func respondError(c *gin.Context, err error) {
	status := 0
	switch {
	case errors.Is(err, service.ErrMenuItemNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrReceiptNotReady),
		errors.Is(err, cart.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCheckoutInProgress),
		errors.Is(err, service.ErrBillConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrPaymentRequired),
		errors.Is(err, service.ErrNegativePayment),
		errors.Is(err, service.ErrPaymentMismatch),
		errors.Is(err, service.ErrPaymentPrecision),
		errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrInvalidFilter),
		errors.Is(err, service.ErrInvalidDateKey),
		errors.Is(err, cart.ErrUnknownOption),
		errors.Is(err, cart.ErrInactiveItem),
		errors.Is(err, cart.ErrInvalidSession),
		errors.Is(err, cart.ErrInvalidType):
		status = http.StatusBadRequest
	}
	if status == 0 {
		_ = c.Error(err)
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}
