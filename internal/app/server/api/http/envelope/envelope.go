// Package envelope приводит все ответы API к виду {success, data | error}.
package envelope

import (
	"net/http"

	"clipsync/internal/domain/apperr"

	"github.com/danielgtaylor/huma/v2"
)

type Response[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// Output - ответ операции huma со статусом и конвертом.
type Output[T any] struct {
	Status int
	Body   Response[T]
}

func OK[T any](data T) *Output[T] {
	return &Output[T]{Status: http.StatusOK, Body: Response[T]{Success: true, Data: data}}
}

func Created[T any](data T) *Output[T] {
	return &Output[T]{Status: http.StatusCreated, Body: Response[T]{Success: true, Data: data}}
}

// Error - тело ответа с ошибкой. Реализует huma.StatusError.
type Error struct {
	status  int
	Success bool     `json:"success"`
	Message string   `json:"error" doc:"Описание ошибки"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) GetStatus() int {
	return e.status
}

func newError(status int, msg string, errs ...error) huma.StatusError {
	e := &Error{status: status, Message: msg}
	for _, err := range errs {
		if err != nil {
			e.Details = append(e.Details, err.Error())
		}
	}
	return e
}

// Install подменяет конструктор ошибок huma, чтобы ошибки валидации и
// ошибки обработчиков имели одинаковый формат.
func Install() {
	huma.NewError = newError
}

// Fail переводит доменную ошибку в ответ с соответствующим статусом.
func Fail(err error) error {
	return huma.NewError(apperr.Status(err), apperr.Message(err))
}

// Internal сообщает, что ошибка не относится ни к одному доменному виду и
// будет отдана клиенту как 500.
func Internal(err error) bool {
	return apperr.Status(err) == http.StatusInternalServerError
}

func Unauthorized() error {
	return huma.NewError(http.StatusUnauthorized, "unauthorized")
}
