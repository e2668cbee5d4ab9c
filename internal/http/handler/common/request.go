package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator сообщает об ошибках по json-именам полей.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ClassRequest тело запросов, адресованных одному классу.
type ClassRequest struct {
	ClassName string `json:"class_name" validate:"required,max=100"`
}

// RenameRequest тело запроса переименования класса.
type RenameRequest struct {
	ClassName string `json:"class_name" validate:"required,max=100"`
	NewName   string `json:"new_name" validate:"required,max=100"`
}

// RosterRequest полная замена списка класса.
type RosterRequest struct {
	ClassName string   `json:"class_name" validate:"required,max=100"`
	K         int      `json:"k" validate:"gte=1"`
	L         int      `json:"l" validate:"gte=1"`
	N         int      `json:"n" validate:"gte=1"`
	Names     []string `json:"names" validate:"omitempty,dive,max=100"`
	SoundOn   bool     `json:"sound_on"`
	AutoSave  bool     `json:"auto_save"`
}

// DrawRequest запрос на вызов следующего ученика.
type DrawRequest struct {
	ClassName   string   `json:"class_name" validate:"required,max=100"`
	AbsentNames []string `json:"absent_names"`
}

// DecodeJSON читает тело запроса и проверяет его по тегам validate.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewBadRequestError("INVALID_BODY", "не удалось прочитать тело запроса")
	}
	if err := validate.Struct(dst); err != nil {
		return NewBadRequestError("VALIDATION_ERROR", validationMessage(err))
	}
	return nil
}

// RequiredQuery возвращает обязательный query-параметр.
func RequiredQuery(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return "", NewBadRequestError("VALIDATION_ERROR", name+" обязателен")
	}
	return value, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s: нарушено правило %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: нарушено правило %s", fe.Field(), fe.Tag())
}
