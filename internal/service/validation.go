package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,18}[0-9]$`)

// validate 共享校验器，字段名取 json 标签
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct 按 validate 标签校验 req，并把违规追加到 ve
func validateStruct(ve *ValidationError, req interface{}) {
	err := validate.Struct(req)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("_", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_if":
		return "不能为空"
	case "min":
		if isString {
			return fmt.Sprintf("长度不能少于 %s 个字符", fe.Param())
		}
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("长度不能超过 %s 个字符", fe.Param())
		}
		return fmt.Sprintf("不能大于 %s", fe.Param())
	case "email":
		return "邮箱格式无效"
	case "phone":
		return "电话号码格式无效"
	case "oneof":
		return fmt.Sprintf("取值必须为 %s 之一", strings.ReplaceAll(fe.Param(), " ", "/"))
	case "datetime":
		return "日期格式无效，应为 yyyy-MM-dd"
	default:
		return "取值无效"
	}
}
