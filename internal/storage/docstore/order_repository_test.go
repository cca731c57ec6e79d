package docstore_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/docstore"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/memory"
)

func newRepository(t *testing.T) (domain.OrderRepository, *memory.DocumentStore) {
	t.Helper()
	store := memory.NewDocumentStore(docstore.Tables()...)
	return docstore.NewOrderRepository(store, docstore.NewSizeGuard(0), nil), store
}

func seedOrders(t *testing.T, repo domain.OrderRepository, n int, customer func(i int) string, status func(i int) domain.OrderStatus) {
	t.Helper()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		order := domain.NewOrder(fmt.Sprintf("order-%02d", i), fmt.Sprintf("ORD-20260501-%04d", 1000+i), customer(i), "", base.Add(time.Duration(i)*time.Minute))
		order.Status = status(i)
		require.NoError(t, repo.Create(context.Background(), order))
	}
}

func TestOrderRepository_CreateGetSave(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	order := buildOrder(t, 2, 1)
	require.NoError(t, repo.Create(ctx, order))

	err := repo.Create(ctx, order)
	require.ErrorIs(t, err, domain.ErrOrderAlreadyExists)

	stored, err := repo.Get(ctx, order.ID)
	require.NoError(t, err)
	assertOrdersEqual(t, order, stored)

	require.NoError(t, stored.FinalizeSelection())
	require.NoError(t, repo.Save(ctx, stored))

	updated, err := repo.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusAwaitingPayment, updated.Status)
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo, _ := newRepository(t)

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.True(t, domain.IsNotFound(err))
}

func TestOrderRepository_SaveRejectsOversizedDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore(docstore.Tables()...)
	repo := docstore.NewOrderRepository(store, docstore.NewSizeGuard(1024), nil)

	order := domain.NewOrder("order-big", "ORD-20260101-1000", "", "", time.Now())
	require.NoError(t, repo.Create(ctx, order))

	product := domain.Product{ID: "p", Name: "Soda", Price: decimal.NewFromInt(1)}
	item, err := domain.NewOrderedProduct("item-1", product, 1, strings.Repeat("z", 2048), nil)
	require.NoError(t, err)
	order.AddProduct(item)

	err = repo.Save(ctx, order)
	require.ErrorIs(t, err, domain.ErrDocumentTooLarge)

	stored, err := repo.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Items)
}

func TestOrderRepository_ListScan(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)
	seedOrders(t, repo, 25, func(int) string { return "" }, func(int) domain.OrderStatus { return domain.OrderStatusStarted })

	tests := []struct {
		page     int
		wantLen  int
		wantNext bool
	}{
		{page: 1, wantLen: 10, wantNext: true},
		{page: 2, wantLen: 10, wantNext: true},
		{page: 3, wantLen: 5, wantNext: false},
	}

	seen := map[string]bool{}
	for _, tt := range tests {
		page, err := repo.List(ctx, domain.ListOrdersQuery{Page: tt.page, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, page.Items, tt.wantLen, "page %d", tt.page)
		require.Equal(t, tt.wantNext, page.HasNextPage, "page %d", tt.page)
		for _, order := range page.Items {
			require.False(t, seen[order.ID], "order %s returned twice", order.ID)
			seen[order.ID] = true
		}
	}
	require.Len(t, seen, 25)
}

func TestOrderRepository_ListDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)
	seedOrders(t, repo, 3, func(int) string { return "" }, func(int) domain.OrderStatus { return domain.OrderStatusStarted })

	page, err := repo.List(ctx, domain.ListOrdersQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, domain.DefaultPageSize, page.PageSize)
	require.Len(t, page.Items, 3)

	_, err = repo.List(ctx, domain.ListOrdersQuery{Page: -1})
	require.ErrorIs(t, err, domain.ErrPageInvalid)

	_, err = repo.List(ctx, domain.ListOrdersQuery{PageSize: domain.MaxPageSize + 1})
	require.ErrorIs(t, err, domain.ErrPageInvalid)
}

func TestOrderRepository_ListByStatusNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)
	seedOrders(t, repo, 12, func(int) string { return "" }, func(i int) domain.OrderStatus {
		if i%3 == 0 {
			return domain.OrderStatusAwaitingPayment
		}
		return domain.OrderStatusStarted
	})

	status := domain.OrderStatusAwaitingPayment
	page, err := repo.List(ctx, domain.ListOrdersQuery{Page: 1, PageSize: 10, Status: &status})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	require.False(t, page.HasNextPage)
	require.Equal(t, "order-09", page.Items[0].ID)
	require.Equal(t, "order-00", page.Items[3].ID)
	for _, order := range page.Items {
		require.Equal(t, status, order.Status)
	}
}

func TestOrderRepository_ListByCustomerWithStatusFilter(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)
	seedOrders(t, repo, 20, func(i int) string {
		if i%2 == 0 {
			return "alice"
		}
		return ""
	}, func(i int) domain.OrderStatus {
		if i%4 == 0 {
			return domain.OrderStatusCancelled
		}
		return domain.OrderStatusStarted
	})

	page, err := repo.List(ctx, domain.ListOrdersQuery{Page: 1, PageSize: 3, CustomerID: "alice"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.True(t, page.HasNextPage)
	require.Equal(t, "order-18", page.Items[0].ID)

	cancelled := domain.OrderStatusCancelled
	page, err = repo.List(ctx, domain.ListOrdersQuery{Page: 2, PageSize: 2, CustomerID: "alice", Status: &cancelled})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "order-08", page.Items[0].ID)
	require.Equal(t, "order-04", page.Items[1].ID)
	require.True(t, page.HasNextPage)
}

func TestOrderRepository_CodeExists(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)
	seedOrders(t, repo, 2, func(int) string { return "" }, func(int) domain.OrderStatus { return domain.OrderStatusStarted })

	exists, err := repo.CodeExists(ctx, "ORD-20260501-1001")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.CodeExists(ctx, "ORD-20260501-9999")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestProductRepository_PutGet(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewProductRepository(memory.NewDocumentStore(docstore.Tables()...))

	err := repo.Put(ctx, domain.Product{ID: "p-1", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, domain.ErrNameRequired)
	require.ErrorIs(t, err, domain.ErrPriceInvalid)

	product := domain.Product{ID: "p-1", Name: "Fries", Category: domain.CategorySide, Price: decimal.RequireFromString("7.5")}
	require.NoError(t, repo.Put(ctx, product))

	got, err := repo.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, "Fries", got.Name)
	require.True(t, got.Price.Equal(product.Price))

	_, err = repo.GetProduct(ctx, "p-2")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}
