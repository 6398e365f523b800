package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mes-platform/production-service/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		registerCustom(validate)

		// Use JSON tag names for error messages
		validate.RegisterTagNameFunc(jsonTagName)

		// Set as Gin's default validator
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustom(v)
			v.RegisterTagNameFunc(jsonTagName)
		}
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	}
	return validate
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("job_number", validateJobNumber)
	_ = v.RegisterValidation("order_number", validateOrderNumber)
	_ = v.RegisterValidation("item_code", validateItemCode)
	_ = v.RegisterValidation("material_code", validateMaterialCode)
	_ = v.RegisterValidation("employee_ref", validateEmployeeRef)
	_ = v.RegisterValidation("step_status", validateStepStatus)
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return fld.Name
	}
	return name
}

// Custom validators

var (
	jobNumberRegex    = regexp.MustCompile(`^JOB-[A-Za-z0-9]{4,}(-[A-Za-z0-9]+)*$`)
	orderNumberRegex  = regexp.MustCompile(`^ORD-[A-Za-z0-9]{4,}$`)
	itemCodeRegex     = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,49}$`)
	materialCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._-]{1,49}$`)
	employeeRefRegex  = regexp.MustCompile(`^[A-Za-z0-9._-]{2,50}$`)
)

func validateJobNumber(fl validator.FieldLevel) bool {
	return jobNumberRegex.MatchString(fl.Field().String())
}

func validateOrderNumber(fl validator.FieldLevel) bool {
	return orderNumberRegex.MatchString(fl.Field().String())
}

func validateItemCode(fl validator.FieldLevel) bool {
	return itemCodeRegex.MatchString(fl.Field().String())
}

func validateMaterialCode(fl validator.FieldLevel) bool {
	return materialCodeRegex.MatchString(fl.Field().String())
}

func validateEmployeeRef(fl validator.FieldLevel) bool {
	return employeeRefRegex.MatchString(fl.Field().String())
}

func validateStepStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "in_progress", "completed", "failed":
		return true
	}
	return false
}

// ValidationErrorFormatter formats validation errors into a field map
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			fields[e.Field()] = formatValidationError(e)
		}
	}

	return fields
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "job_number":
		return "must be a valid job number (format: JOB-xxxx)"
	case "order_number":
		return "must be a valid order number (format: ORD-xxxx)"
	case "item_code":
		return "must be a valid item code (uppercase alphanumeric with dashes)"
	case "material_code":
		return "must be a valid material code"
	case "employee_ref":
		return "must be a valid employee ID or badge code"
	case "step_status":
		return "must be one of: pending, in_progress, completed, failed"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

// BindAndValidate binds the request body and validates it
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return errors.ErrValidationWithFields("validation failed", ValidationErrorFormatter(validationErrors))
		}
		return errors.ErrBadRequest("invalid request body: " + err.Error())
	}
	return nil
}

// ValidateStruct validates a struct using the shared validator
func ValidateStruct(obj interface{}) *errors.AppError {
	v := GetValidator()
	if err := v.Struct(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return errors.ErrValidationWithFields("validation failed", ValidationErrorFormatter(validationErrors))
		}
		return errors.ErrBadRequest("validation failed: " + err.Error())
	}
	return nil
}

// SanitizeString removes null bytes and trims whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// InputSanitizer middleware sanitizes query string inputs
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		for key, values := range query {
			for i, v := range values {
				values[i] = SanitizeString(v)
			}
			query[key] = values
		}
		c.Request.URL.RawQuery = query.Encode()

		c.Next()
	}
}

// ContentType middleware ensures proper content type for POST/PUT/PATCH
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "POST" || c.Request.Method == "PUT" || c.Request.Method == "PATCH" {
			contentType := c.GetHeader("Content-Type")
			if contentType == "" || !strings.HasPrefix(contentType, "application/json") {
				if c.Request.ContentLength > 0 {
					AbortWithAppError(c, &errors.AppError{
						Code:       "INVALID_CONTENT_TYPE",
						Message:    "Content-Type must be application/json",
						HTTPStatus: 415,
					})
					return
				}
			}
		}
		c.Next()
	}
}
