package handler

import (
	"errors"
	"net/http"
	"reflect"

	"lexfin/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
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
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps a domain error to its HTTP status. Consistency errors are
// engine bugs and get logged loudly with the request id before the 500 goes out.
func respondError(c *gin.Context, err error) {
	status := apierror.Status(err)

	var ie *apierror.ConsistencyError
	if errors.As(err, &ie) {
		log.Error().
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Str("detail", ie.Detail).
			Msg("invariante del motor financiero roto")
		c.JSON(status, apierror.New("Error interno del servidor"))
		return
	}

	var ve *apierror.ValidationError
	if errors.As(err, &ve) {
		c.JSON(status, ve)
		return
	}
	var ce *apierror.ConflictError
	if errors.As(err, &ce) {
		c.JSON(status, ce)
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

// parseID extracts and validates a UUID path parameter.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}
