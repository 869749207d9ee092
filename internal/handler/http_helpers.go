package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/centaura/cms/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// RegisterValidatorTagNames 让校验错误使用 JSON 字段名，与响应体中的字段保持一致。
func RegisterValidatorTagNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondValidation(c *gin.Context, verr *service.ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
}

// respondServiceError 把服务层错误映射为 HTTP 状态码；未知错误记录日志后返回 500。
func (a *API) respondServiceError(c *gin.Context, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found")
	default:
		a.log.Error(action+" failed", "path", c.Request.URL.Path, "error", err)
		c.Error(err)
		respondError(c, http.StatusInternalServerError, action+" failed")
	}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if verr := validationError(err); verr != nil {
			respondValidation(c, verr)
			return false
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			respondValidation(c, service.NewValidationError(typeErr.Field, fmt.Sprintf("Expected a %s value.", typeErr.Type)))
			return false
		}
		respondError(c, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

// validateStruct runs the binding validator on a value assembled by hand, e.g. from a form.
func validateStruct(item interface{}) *service.ValidationError {
	if err := binding.Validator.ValidateStruct(item); err != nil {
		if verr := validationError(err); verr != nil {
			return verr
		}
		return service.NewValidationError("non_field_errors", err.Error())
	}
	return nil
}

// validationError 将 validator 的错误转换为按字段划分的消息，非校验类错误返回 nil。
func validationError(err error) *service.ValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}

	verr := &service.ValidationError{}
	for _, fe := range errs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "url", "uri":
		return "Enter a valid URL."
	case "max":
		if numeric {
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		if numeric {
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
