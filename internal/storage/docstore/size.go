package docstore

import (
	"fmt"
	"unicode/utf8"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

const (
	// DefaultMaxDocumentSize: предел размера документа хранилища (400 КБ).
	DefaultMaxDocumentSize = 400 * 1024
	// sizeOverhead учитывает имена атрибутов и служебные байты, которые оценка не считает.
	sizeOverhead = 1.2
)

// SizeGuard отклоняет заказы, чей документ превысит предел хранилища.
type SizeGuard struct {
	Limit int
}

// NewSizeGuard создаёт проверку с пределом limit; limit <= 0 означает предел по умолчанию.
func NewSizeGuard(limit int) SizeGuard {
	if limit <= 0 {
		limit = DefaultMaxDocumentSize
	}
	return SizeGuard{Limit: limit}
}

// Validate возвращает ErrDocumentTooLarge, если оценка размера больше предела.
func (g SizeGuard) Validate(order domain.Order) error {
	limit := g.Limit
	if limit <= 0 {
		limit = DefaultMaxDocumentSize
	}
	size := EstimateSize(OrderToDocument(order))
	if size > limit {
		return fmt.Errorf("%w: order %s estimated at %d bytes, limit %d", domain.ErrDocumentTooLarge, order.ID, size, limit)
	}
	return nil
}

// EstimateSize: сумма длин строковых представлений всех скалярных значений
// документа (с вложенными), умноженная на запас 1.2.
func EstimateSize(doc Document) int {
	total := 0
	for _, value := range doc {
		total += scalarLength(value)
	}
	return int(float64(total) * sizeOverhead)
}

func scalarLength(value AttributeValue) int {
	switch value.Kind {
	case KindList:
		n := 0
		for _, v := range value.L {
			n += scalarLength(v)
		}
		return n
	case KindMap:
		n := 0
		for _, v := range value.M {
			n += scalarLength(v)
		}
		return n
	default:
		s, _ := value.Scalar()
		return utf8.RuneCountInString(s)
	}
}
