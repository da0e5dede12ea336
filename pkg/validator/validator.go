package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

type structValidator struct {
	v *validator.Validate
}

// New returns a standalone validator with the custom tags registered. It
// reads the `binding` tag so request structs validate the same way they do
// under gin.
func New() Validator {
	v := validator.New()
	v.SetTagName("binding")
	mustRegister(v)
	return &structValidator{v: v}
}

func (s *structValidator) Validate(obj interface{}) error {
	return s.v.Struct(obj)
}

// RegisterGin installs the custom tags on gin's default binding engine.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return register(v)
}

func mustRegister(v *validator.Validate) {
	if err := register(v); err != nil {
		panic(err)
	}
}

func register(v *validator.Validate) error {
	// report fields by their JSON names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("isodate", isoDate); err != nil {
		return err
	}
	if err := v.RegisterValidation("slot", slot); err != nil {
		return err
	}
	return v.RegisterValidation("tab", tab)
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func slot(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func tab(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "therapy", "doctor":
		return true
	}
	return false
}

// Describe flattens validation errors into one readable message.
func Describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "isodate":
			msgs = append(msgs, fmt.Sprintf("%s must be a yyyy-MM-dd date", fe.Field()))
		case "slot":
			msgs = append(msgs, fmt.Sprintf("%s must be an HH:MM slot", fe.Field()))
		case "tab":
			msgs = append(msgs, fmt.Sprintf("%s must be therapy or doctor", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}
