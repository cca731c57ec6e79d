package domain

import (
	"errors"
	"fmt"
)

// Категории ошибок. Конкретные ошибки оборачивают категорию, поэтому
// errors.Is работает и по конкретной ошибке, и по категории.
var (
	// ErrNotFound: запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrValidation: входные данные некорректны, повтор не поможет.
	ErrValidation = errors.New("validation failed")
	// ErrBusinessRule: операция недопустима в текущем состоянии агрегата.
	ErrBusinessRule = errors.New("business rule violated")
	// ErrCapacity: превышен технический лимит (размер документа, пространство кодов).
	ErrCapacity = errors.New("capacity exceeded")
	// ErrGateway: ошибка внешнего платёжного шлюза.
	ErrGateway = errors.New("payment gateway error")
)

var (
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)
	// ErrProductNotFound возвращается, если товара нет в каталоге.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	// ErrOrderItemNotFound: в заказе нет позиции с таким идентификатором.
	ErrOrderItemNotFound = fmt.Errorf("order item %w", ErrNotFound)

	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = fmt.Errorf("%w: item quantity must be greater than zero", ErrValidation)
	// Ошибка пустого имени товара или ингредиента.
	ErrNameRequired = fmt.Errorf("%w: name is required", ErrValidation)
	// Ошибка отрицательной или пустой цены.
	ErrPriceInvalid = fmt.Errorf("%w: price must be non-negative", ErrValidation)
	// ErrIngredientNotAllowed: ингредиент не входит в состав товара.
	ErrIngredientNotAllowed = fmt.Errorf("%w: ingredient does not belong to product", ErrValidation)
	// ErrPageInvalid: некорректные параметры страницы.
	ErrPageInvalid = fmt.Errorf("%w: page must be >= 1 and page size within [1,%d]", ErrValidation, MaxPageSize)

	// ErrEmptyOrder: нельзя подтвердить заказ без позиций.
	ErrEmptyOrder = fmt.Errorf("%w: order must contain at least one item", ErrBusinessRule)
	// ErrInvalidTransition: переход статуса не разрешён.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrBusinessRule)
	// ErrOrderNotEditable: позиции можно менять только у заказа в статусе Started.
	ErrOrderNotEditable = fmt.Errorf("%w: order can no longer be modified", ErrBusinessRule)
	// ErrOrderAlreadyExists: документ с таким идентификатором уже сохранён.
	ErrOrderAlreadyExists = fmt.Errorf("%w: order already exists", ErrBusinessRule)

	// ErrDocumentTooLarge: оценка размера документа превышает лимит хранилища.
	ErrDocumentTooLarge = fmt.Errorf("%w: document exceeds size limit", ErrCapacity)
	// ErrOrderCodeExhausted: не удалось подобрать уникальный код заказа.
	ErrOrderCodeExhausted = fmt.Errorf("%w: unable to generate unique order code", ErrCapacity)

	// ErrGatewayUnauthorized: шлюз отклонил bearer-токен (401).
	ErrGatewayUnauthorized = fmt.Errorf("%w: unauthorized", ErrGateway)
	// ErrSnapshotEmpty: в снимке заказа нет позиций, отправлять нечего.
	ErrSnapshotEmpty = fmt.Errorf("%w: order snapshot has no items", ErrGateway)
)

// IsNotFound проверяет, относится ли ошибка к категории not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation проверяет, относится ли ошибка к категории validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsBusinessRule проверяет, относится ли ошибка к категории business-rule.
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrBusinessRule)
}

// IsCapacity проверяет, относится ли ошибка к категории capacity.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrCapacity)
}

// IsGateway проверяет, пришла ли ошибка от платёжного шлюза.
func IsGateway(err error) bool {
	return errors.Is(err, ErrGateway)
}
