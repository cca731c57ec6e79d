package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

// GatewayError: итоговая ошибка вызова шлюза. StatusCode равен 0, если ответа не было.
type GatewayError struct {
	StatusCode int
	Attempts   int
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return fmt.Sprintf("payment gateway rejected credentials (401) after %d attempt(s): %v", e.Attempts, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("payment gateway returned %d after %d attempt(s): %v", e.StatusCode, e.Attempts, e.Err)
	default:
		return fmt.Sprintf("payment gateway unavailable after %d attempt(s): %v", e.Attempts, e.Err)
	}
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с категорией шлюза, а 401: ещё и с ErrGatewayUnauthorized.
func (e *GatewayError) Is(target error) bool {
	switch target {
	case domain.ErrGateway:
		return true
	case domain.ErrGatewayUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	default:
		return false
	}
}

// statusError: ответ шлюза с кодом вне 2xx.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return http.StatusText(e.code)
	}
	return fmt.Sprintf("%s: %s", http.StatusText(e.code), e.body)
}

// StatusCode извлекает HTTP-код из ошибки шлюза, если он есть.
func StatusCode(err error) int {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode
	}
	return 0
}
