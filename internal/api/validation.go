package api

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"controlnest-backend/internal/objectid"
)

// FieldError is one failed check on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the outcome of a failed request validation.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + " " + fe.Message
	}
	return strings.Join(parts, ", ")
}

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return objectid.IsValid(fl.Field().String())
	})
}

// bind decodes the request body into dst according to its content type and
// validates it. An empty body is validated as the zero value.
func bind(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 && c.ContentType() != binding.MIMEMultipartPOSTForm {
		if err := binding.Validator.ValidateStruct(dst); err != nil {
			return toValidationErrors(err)
		}
		return nil
	}
	if err := c.ShouldBind(dst); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(ValidationErrors, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: messageFor(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return ValidationErrors{{Field: typeErr.Field, Message: "must be a " + typeErr.Type.String()}}
	}

	return ValidationErrors{{Field: "body", Message: err.Error()}}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "objectid":
		return "must be a valid object id"
	case "url":
		return "must be a valid URL"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}
