package saga_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/metrics"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/saga"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/docstore"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/memory"
)

type stubGateway struct {
	mu        sync.Mutex
	calls     int
	snapshots []domain.PaymentSnapshot
	receipt   domain.PaymentReceipt
	err       error
	onCall    func()
}

func (g *stubGateway) CreatePayment(_ context.Context, _ string, snapshot domain.PaymentSnapshot) (domain.PaymentReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.snapshots = append(g.snapshots, snapshot)
	if g.onCall != nil {
		g.onCall()
	}
	return g.receipt, g.err
}

// recordingRepo запоминает сохранённые статусы и контекст записи.
type recordingRepo struct {
	domain.OrderRepository
	saved     []domain.OrderStatus
	cancelled []bool
	saveErr   error
}

func (r *recordingRepo) Save(ctx context.Context, order domain.Order) error {
	r.saved = append(r.saved, order.Status)
	r.cancelled = append(r.cancelled, ctx.Err() != nil)
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.OrderRepository.Save(ctx, order)
}

type stubPublisher struct {
	events []kafka.OrderEvent
}

func (p *stubPublisher) PublishEvent(_ string, _ string, event interface{}) error {
	p.events = append(p.events, event.(kafka.OrderEvent))
	return nil
}

func newRepo(t *testing.T) *recordingRepo {
	t.Helper()
	store := memory.NewDocumentStore(docstore.Tables()...)
	return &recordingRepo{OrderRepository: docstore.NewOrderRepository(store, docstore.NewSizeGuard(0), nil)}
}

func seedOrder(t *testing.T, repo domain.OrderRepository, withItem bool) domain.Order {
	t.Helper()
	order := domain.NewOrder("order-1", "ORD-20260101-1000", "customer-1", "app", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	if withItem {
		item, err := domain.NewOrderedProduct("item-1", domain.Product{
			ID: "p-1", Name: "Burger", Category: domain.CategorySnack, Price: decimal.NewFromInt(10),
		}, 2, "", nil)
		require.NoError(t, err)
		order.AddProduct(item)
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func newConfirmer(repo domain.OrderRepository, gw domain.PaymentGateway, publisher domain.EventPublisher) *saga.Confirmer {
	opts := []saga.Option{saga.WithMetrics(metrics.NewSagaMetrics(prometheus.NewRegistry()))}
	if publisher != nil {
		opts = append(opts, saga.WithPublisher(publisher, kafka.DefaultTopic))
	}
	return saga.NewConfirmer(repo, gw, "BRL", opts...)
}

func storedStatus(t *testing.T, repo domain.OrderRepository) domain.OrderStatus {
	t.Helper()
	order, err := repo.Get(context.Background(), "order-1")
	require.NoError(t, err)
	return order.Status
}

func TestConfirm_Success(t *testing.T) {
	repo := newRepo(t)
	seedOrder(t, repo, true)
	gw := &stubGateway{receipt: domain.PaymentReceipt{PaymentID: "pay-1", Status: "PENDING"}}
	publisher := &stubPublisher{}

	result, err := newConfirmer(repo, gw, publisher).Confirm(context.Background(), "order-1", "token")
	require.NoError(t, err)
	require.Equal(t, "pay-1", result.PaymentID)
	require.False(t, result.PaymentSkipped)
	require.Equal(t, domain.OrderStatusAwaitingPayment, result.Order.Status)

	require.Equal(t, domain.OrderStatusAwaitingPayment, storedStatus(t, repo))
	require.Equal(t, []domain.OrderStatus{domain.OrderStatusAwaitingPayment}, repo.saved)

	require.Equal(t, 1, gw.calls)
	snapshot := gw.snapshots[0]
	require.Equal(t, "BRL", snapshot.Currency)
	require.Len(t, snapshot.Items, 1)
	require.True(t, snapshot.TotalPrice.Equal(decimal.NewFromInt(20)))

	require.Len(t, publisher.events, 2)
	require.Equal(t, kafka.EventTypeOrderAwaitingPayment, publisher.events[0].EventType)
	require.Equal(t, "Started", publisher.events[0].PreviousStatus)
	require.Equal(t, kafka.EventTypeOrderPaymentRequested, publisher.events[1].EventType)
	require.Equal(t, "pay-1", publisher.events[1].PaymentID)
}

func TestConfirm_GatewayFailureCompensates(t *testing.T) {
	repo := newRepo(t)
	seedOrder(t, repo, true)
	gwErr := errors.New("gateway exploded")
	gw := &stubGateway{err: gwErr}
	publisher := &stubPublisher{}

	_, err := newConfirmer(repo, gw, publisher).Confirm(context.Background(), "order-1", "token")
	require.ErrorIs(t, err, gwErr)

	require.Equal(t, domain.OrderStatusStarted, storedStatus(t, repo))
	require.Equal(t, []domain.OrderStatus{domain.OrderStatusAwaitingPayment, domain.OrderStatusStarted}, repo.saved)
	require.Equal(t, 1, gw.calls)

	last := publisher.events[len(publisher.events)-1]
	require.Equal(t, kafka.EventTypeOrderCompensated, last.EventType)
	require.Equal(t, "Started", last.Status)
	require.Contains(t, last.Reason, "gateway exploded")
}

func TestConfirm_CompensationSurvivesCancelledRequest(t *testing.T) {
	repo := newRepo(t)
	seedOrder(t, repo, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gw := &stubGateway{err: context.Canceled, onCall: cancel}

	_, err := newConfirmer(repo, gw, nil).Confirm(ctx, "order-1", "token")
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, domain.OrderStatusStarted, storedStatus(t, repo))
	require.Equal(t, []bool{false, false}, repo.cancelled)
}

func TestConfirm_CompensationPersistFailureKeepsOriginalError(t *testing.T) {
	repo := newRepo(t)
	seedOrder(t, repo, true)
	gwErr := errors.New("gateway down")
	gw := &stubGateway{err: gwErr, onCall: func() { repo.saveErr = errors.New("store down") }}

	_, err := newConfirmer(repo, gw, nil).Confirm(context.Background(), "order-1", "token")
	require.ErrorIs(t, err, gwErr)
	require.Contains(t, err.Error(), "store down")
	require.Equal(t, domain.OrderStatusAwaitingPayment, storedStatus(t, repo))
}

func TestConfirm_EmptyOrderNeverCallsGateway(t *testing.T) {
	repo := newRepo(t)
	seedOrder(t, repo, false)
	gw := &stubGateway{}

	_, err := newConfirmer(repo, gw, nil).Confirm(context.Background(), "order-1", "token")
	require.ErrorIs(t, err, domain.ErrEmptyOrder)
	require.True(t, domain.IsBusinessRule(err))
	require.Zero(t, gw.calls)
	require.Empty(t, repo.saved)
	require.Equal(t, domain.OrderStatusStarted, storedStatus(t, repo))
}

func TestConfirm_RejectsOrderOutsideStarted(t *testing.T) {
	repo := newRepo(t)
	order := seedOrder(t, repo, true)
	require.NoError(t, order.FinalizeSelection())
	require.NoError(t, repo.OrderRepository.Save(context.Background(), order))
	gw := &stubGateway{}

	_, err := newConfirmer(repo, gw, nil).Confirm(context.Background(), "order-1", "token")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	require.Zero(t, gw.calls)
	require.Empty(t, repo.saved)
}

func TestConfirm_MissingBearerSkipsGateway(t *testing.T) {
	repo := newRepo(t)
	seedOrder(t, repo, true)
	gw := &stubGateway{}

	result, err := newConfirmer(repo, gw, nil).Confirm(context.Background(), "order-1", "  ")
	require.NoError(t, err)
	require.True(t, result.PaymentSkipped)
	require.Empty(t, result.PaymentID)
	require.Zero(t, gw.calls)
	require.Equal(t, domain.OrderStatusAwaitingPayment, storedStatus(t, repo))
}

func TestConfirm_NotFound(t *testing.T) {
	repo := newRepo(t)
	gw := &stubGateway{}

	_, err := newConfirmer(repo, gw, nil).Confirm(context.Background(), "missing", "token")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.Zero(t, gw.calls)
}

func TestConfirm_PersistFailureSkipsGateway(t *testing.T) {
	repo := newRepo(t)
	seedOrder(t, repo, true)
	repo.saveErr = errors.New("store down")
	gw := &stubGateway{}

	_, err := newConfirmer(repo, gw, nil).Confirm(context.Background(), "order-1", "token")
	require.ErrorContains(t, err, "store down")
	require.Zero(t, gw.calls)
	require.Equal(t, domain.OrderStatusStarted, storedStatus(t, repo))
}
