package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nexus-store/internal/auth"
	"nexus-store/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// first returns the first mocked return value as T, or T's zero value when
// the mock returned nil.
func first[T any](args mock.Arguments) T {
	v, _ := args.Get(0).(T)
	return v
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return first[[]model.Category](args), args.Error(1)
}

func (m *MockCategoryService) ListAll(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return first[[]model.Category](args), args.Error(1)
}

func (m *MockCategoryService) GetByID(ctx context.Context, id int64) (*model.CategoryDetail, error) {
	args := m.Called(ctx, id)
	return first[*model.CategoryDetail](args), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, req)
	return first[*model.Category](args), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id int64, req *model.UpdateCategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, id, req)
	return first[*model.Category](args), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error) {
	args := m.Called(ctx, f)
	return first[*model.ProductPage](args), args.Error(1)
}

func (m *MockProductService) Search(ctx context.Context, f model.ProductFilter) (*model.ProductSearchResult, error) {
	args := m.Called(ctx, f)
	return first[*model.ProductSearchResult](args), args.Error(1)
}

func (m *MockProductService) ListByCategory(ctx context.Context, categoryID int64, f model.ProductFilter) (*model.ProductPage, error) {
	args := m.Called(ctx, categoryID, f)
	return first[*model.ProductPage](args), args.Error(1)
}

func (m *MockProductService) Featured(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return first[[]model.Product](args), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	return first[*model.Product](args), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	return first[*model.Product](args), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id int64, req *model.UpdateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, id, req)
	return first[*model.Product](args), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	args := m.Called(ctx, userID)
	return first[*model.CartView](args), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error) {
	args := m.Called(ctx, userID, req)
	return first[*model.CartItem](args), args.Error(1)
}

func (m *MockCartService) IncreaseItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItemResponse, error) {
	args := m.Called(ctx, userID, itemID)
	return first[*model.CartItemResponse](args), args.Error(1)
}

func (m *MockCartService) DecreaseItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItemResponse, error) {
	args := m.Called(ctx, userID, itemID)
	return first[*model.CartItemResponse](args), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartItemResponse, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	return first[*model.CartItemResponse](args), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, idempotencyKey string, req *model.CreateOrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, userID, idempotencyKey, req)
	return first[*model.OrderResponse](args), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, userID, id)
	return first[*model.OrderResponse](args), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error) {
	args := m.Called(ctx, userID)
	return first[[]model.OrderResponse](args), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, userID, id uuid.UUID, reason string) (*model.OrderResponse, error) {
	args := m.Called(ctx, userID, id, reason)
	return first[*model.OrderResponse](args), args.Error(1)
}

func (m *MockOrderService) AdminList(ctx context.Context, status *model.OrderStatus) ([]model.OrderResponse, error) {
	args := m.Called(ctx, status)
	return first[[]model.OrderResponse](args), args.Error(1)
}

func (m *MockOrderService) AdminGet(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	return first[*model.OrderResponse](args), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.OrderResponse, error) {
	args := m.Called(ctx, id, status)
	return first[*model.OrderResponse](args), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Create(ctx context.Context, userID uuid.UUID, req *model.CreatePaymentRequest) (*model.Payment, error) {
	args := m.Called(ctx, userID, req)
	return first[*model.Payment](args), args.Error(1)
}

func (m *MockPaymentService) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, userID, id)
	return first[*model.Payment](args), args.Error(1)
}

func (m *MockPaymentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error) {
	args := m.Called(ctx, userID)
	return first[[]model.Payment](args), args.Error(1)
}

func (m *MockPaymentService) ProcessMock(ctx context.Context, userID, id uuid.UUID, req *model.ProcessMockPaymentRequest) (*model.ProcessMockPaymentResponse, error) {
	args := m.Called(ctx, userID, id, req)
	return first[*model.ProcessMockPaymentResponse](args), args.Error(1)
}

func (m *MockPaymentService) RequestRefund(ctx context.Context, userID, id uuid.UUID, req *model.RefundRequest) (*model.RefundResponse, error) {
	args := m.Called(ctx, userID, id, req)
	return first[*model.RefundResponse](args), args.Error(1)
}

func (m *MockPaymentService) AdminList(ctx context.Context) ([]model.Payment, error) {
	args := m.Called(ctx)
	return first[[]model.Payment](args), args.Error(1)
}

func (m *MockPaymentService) AdminGet(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	return first[*model.Payment](args), args.Error(1)
}

func (m *MockPaymentService) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdatePaymentStatusRequest) (*model.Payment, error) {
	args := m.Called(ctx, id, req)
	return first[*model.Payment](args), args.Error(1)
}

func (m *MockPaymentService) Webhook(ctx context.Context, provider string, payload []byte) (*model.WebhookResponse, error) {
	args := m.Called(ctx, provider, payload)
	return first[*model.WebhookResponse](args), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListByProduct(ctx context.Context, productID int64) ([]model.Review, error) {
	args := m.Called(ctx, productID)
	return first[[]model.Review](args), args.Error(1)
}

func (m *MockReviewService) Stats(ctx context.Context, productID int64) (*model.ReviewStats, error) {
	args := m.Called(ctx, productID)
	return first[*model.ReviewStats](args), args.Error(1)
}

func (m *MockReviewService) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	args := m.Called(ctx, id)
	return first[*model.Review](args), args.Error(1)
}

func (m *MockReviewService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Review, error) {
	args := m.Called(ctx, userID)
	return first[[]model.Review](args), args.Error(1)
}

func (m *MockReviewService) ListAll(ctx context.Context) ([]model.Review, error) {
	args := m.Called(ctx)
	return first[[]model.Review](args), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, userID uuid.UUID, username string, req *model.CreateReviewRequest) (*model.Review, error) {
	args := m.Called(ctx, userID, username, req)
	return first[*model.Review](args), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateReviewRequest) (*model.Review, error) {
	args := m.Called(ctx, userID, id, req)
	return first[*model.Review](args), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockReviewService) Vote(ctx context.Context, userID, id uuid.UUID, helpful bool) (*model.HelpfulVoteResponse, error) {
	args := m.Called(ctx, userID, id, helpful)
	return first[*model.HelpfulVoteResponse](args), args.Error(1)
}

var (
	customer = &auth.Caller{UserID: uuid.MustParse("7f1c2d3e-0000-4000-8000-000000000001"), Username: "amina"}
	staff    = &auth.Caller{UserID: uuid.MustParse("7f1c2d3e-0000-4000-8000-000000000002"), Username: "ops", IsStaff: true}
)

// chiRequest describes one request routed through a handler's routes.
type chiRequest struct {
	method string
	target string
	body   any
	header map[string]string
}

// serve routes r through a router that mounts register at prefix. A non-nil
// caller is attached to the request context.
func (cr chiRequest) serve(t *testing.T, prefix string, register func(chi.Router), c *auth.Caller) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if c != nil {
				req = req.WithContext(auth.WithCaller(req.Context(), c))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route(prefix, register)

	var buf bytes.Buffer
	switch b := cr.body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(cr.method, cr.target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range cr.header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func serve(t *testing.T, prefix string, register func(chi.Router), c *auth.Caller, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return chiRequest{method: method, target: target, body: body}.serve(t, prefix, register, c)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}
