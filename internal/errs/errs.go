package errs

import (
	"errors"
	"fmt"
)

// Категории ошибок ядра. API-слой мапит их на транспортные статусы.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation")
	ErrInactiveAccount = errors.New("inactive account")
	ErrConfig          = errors.New("config")
	ErrStorage         = errors.New("storage")
)

// Error несёт категорию и человекочитаемое сообщение.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// NotFound — сущность с таким ID не существует.
func NotFound(entity, id string) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf("%s %q not found", entity, id)}
}

// Conflictf — нарушено предусловие состояния (терминал занят и т.п.).
func Conflictf(format string, args ...any) error {
	return &Error{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// Validationf — некорректный ввод.
func Validationf(format string, args ...any) error {
	return &Error{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Inactive — аккаунт деактивирован.
func Inactive(entity, id string) error {
	return &Error{kind: ErrInactiveAccount, msg: fmt.Sprintf("%s %q is inactive", entity, id)}
}

// Configf — ошибка конфигурации (неизвестная категория тарифа и т.п.).
func Configf(format string, args ...any) error {
	return &Error{kind: ErrConfig, msg: fmt.Sprintf(format, args...)}
}

// Storage оборачивает ошибку хранилища, сохраняя причину.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
