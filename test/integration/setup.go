package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nexus-store/internal/auth"
	"nexus-store/internal/config"
	"nexus-store/internal/database/dbtest"
	"nexus-store/internal/events"
	"nexus-store/internal/handler"
	"nexus-store/internal/idempotency"
	"nexus-store/internal/repository"
	"nexus-store/internal/router"
	"nexus-store/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const (
	testSecret = "integration-secret"
	testIssuer = "nexus-store-test"
)

// recorder keeps every published event in memory.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

// Types returns the recorded event types in publish order.
func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// TestServer is the full HTTP stack over disposable Postgres and Redis containers.
type TestServer struct {
	DB      *dbtest.TestDB
	Handler http.Handler
	Events  *recorder
}

// SetupTestServer wires repositories, services and handlers exactly as the
// API binary does, with a recording event publisher.
func SetupTestServer(t *testing.T) *TestServer {
	t.Helper()

	db := dbtest.Setup(t)
	logger := zerolog.Nop()

	rec := &recorder{}
	guard := idempotency.NewRedisGuard(setupRedis(t), time.Hour, logger)

	categoryRepo := repository.NewCategoryRepository(db.Pool, logger)
	productRepo := repository.NewProductRepository(db.Pool, logger)
	cartRepo := repository.NewCartRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	paymentRepo := repository.NewPaymentRepository(db.Pool, logger)
	reviewRepo := repository.NewReviewRepository(db.Pool, logger)

	validate := handler.NewValidator()
	handlers := router.Handlers{
		Categories: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, logger), validate, logger),
		Products:   handler.NewProductHandler(service.NewProductService(productRepo, categoryRepo, logger), validate, logger),
		Cart:       handler.NewCartHandler(service.NewCartService(cartRepo, productRepo, logger), validate, logger),
		Orders:     handler.NewOrderHandler(service.NewOrderService(orderRepo, cartRepo, guard, rec, logger), validate, logger),
		Payments:   handler.NewPaymentHandler(service.NewPaymentService(paymentRepo, orderRepo, rec, logger), validate, logger),
		Reviews:    handler.NewReviewHandler(service.NewReviewService(reviewRepo, orderRepo, productRepo, logger), validate, logger),
	}

	verifier := auth.NewHS256Verifier([]byte(testSecret), testIssuer)
	return &TestServer{
		DB:      db,
		Handler: router.New(handlers, verifier, config.RateLimitConfig{}, db.Pool.Ping, logger),
		Events:  rec,
	}
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	connStr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(connStr)
	require.NoError(t, err)
	client := redis.NewClient(opts)

	t.Cleanup(func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})
	return client
}

// User is a caller with a signed bearer token.
type User struct {
	auth.Caller
	Token string
}

// NewUser issues a token for a fresh user id.
func NewUser(t *testing.T, username string, staff bool) User {
	t.Helper()

	c := auth.Caller{
		UserID:   uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		IsStaff:  staff,
	}
	token, err := auth.IssueToken([]byte(testSecret), testIssuer, c, time.Hour)
	require.NoError(t, err)
	return User{Caller: c, Token: token}
}

// Do sends a JSON request as u. A nil u sends an anonymous request.
func (s *TestServer) Do(t *testing.T, u *User, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.Handler.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the response body into T, failing on an unexpected status.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()

	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
