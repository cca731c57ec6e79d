package docstore

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
)

// PageRequest: номер страницы (с 1) и её размер.
type PageRequest struct {
	Page     int
	PageSize int
}

// Validate проверяет границы запроса страницы.
func (r PageRequest) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("%w: page %d", domain.ErrPageInvalid, r.Page)
	}
	if r.PageSize < 1 || r.PageSize > domain.MaxPageSize {
		return fmt.Errorf("%w: page size %d", domain.ErrPageInvalid, r.PageSize)
	}
	return nil
}

// FetchFunc читает не больше limit элементов, начиная с token.
// Пустой возвращённый токен означает конец обхода.
type FetchFunc[T any] func(ctx context.Context, limit int, token string) ([]T, string, error)

// Window: окно элементов запрошенной страницы.
type Window[T any] struct {
	Items []T
	// NextToken: токен последнего чтения; пуст, если обход дошёл до конца.
	NextToken   string
	HasNextPage bool
}

// Paginate эмулирует page/pageSize поверх обхода с токенами продолжения:
// первые (Page-1)*PageSize элементов пропускаются, следующие PageSize собираются в окно.
// Чтения повторяются с последним токеном, пока окно не заполнено или токен не исчерпан.
// HasNextPage истинен только для заполненного окна, за которым что-то осталось.
func Paginate[T any](ctx context.Context, req PageRequest, fetch FetchFunc[T]) (Window[T], error) {
	if err := req.Validate(); err != nil {
		return Window[T]{}, err
	}

	skip := (req.Page - 1) * req.PageSize
	items := make([]T, 0, req.PageSize)
	token := ""
	leftover := false

	for {
		if err := ctx.Err(); err != nil {
			return Window[T]{}, err
		}
		batch, next, err := fetch(ctx, req.PageSize, token)
		if err != nil {
			return Window[T]{}, err
		}

		i := 0
		if skip > 0 {
			i = min(skip, len(batch))
			skip -= i
		}
		for ; i < len(batch) && len(items) < req.PageSize; i++ {
			items = append(items, batch[i])
		}
		leftover = i < len(batch)
		token = next

		if len(items) == req.PageSize || token == "" {
			break
		}
	}

	full := len(items) == req.PageSize
	return Window[T]{
		Items:       items,
		NextToken:   token,
		HasNextPage: full && (token != "" || leftover),
	}, nil
}

// Filter оставляет в каждой пачке только элементы, удовлетворяющие предикату.
// Пачка может оказаться пустой при непустом токене, Paginate в этом случае читает дальше.
func Filter[T any](fetch FetchFunc[T], keep func(T) bool) FetchFunc[T] {
	return func(ctx context.Context, limit int, token string) ([]T, string, error) {
		batch, next, err := fetch(ctx, limit, token)
		if err != nil {
			return nil, "", err
		}
		out := batch[:0]
		for _, item := range batch {
			if keep(item) {
				out = append(out, item)
			}
		}
		return out, next, nil
	}
}
