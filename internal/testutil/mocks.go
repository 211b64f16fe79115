package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qsecurex/portal/internal/domain/download"
	"github.com/qsecurex/portal/internal/domain/payment"
)

// FakeGateway is an in-memory payment.Gateway that signs with Secret
type FakeGateway struct {
	ID          string
	Secret      string
	CreateError error

	mu       sync.Mutex
	seq      int
	Requests []payment.GatewayOrderRequest
}

// NewFakeGateway returns a configured fake gateway
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{ID: "rzp_test_key", Secret: "rzp_test_secret"}
}

func (g *FakeGateway) Configured() bool {
	return g.ID != "" && g.Secret != ""
}

func (g *FakeGateway) KeyID() string {
	return g.ID
}

func (g *FakeGateway) CreateOrder(ctx context.Context, req payment.GatewayOrderRequest) (*payment.GatewayOrder, error) {
	if g.CreateError != nil {
		return nil, g.CreateError
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.Requests = append(g.Requests, req)
	return &payment.GatewayOrder{
		ID:          fmt.Sprintf("order_test%04d", g.seq),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Status:      "created",
	}, nil
}

func (g *FakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return payment.VerifySignature(g.Secret, orderID, paymentID, signature)
}

// Sign produces the signature the provider would send for a payment
func (g *FakeGateway) Sign(orderID, paymentID string) string {
	return payment.Sign(g.Secret, orderID, paymentID)
}

// FakeArtifactStore is an in-memory download.ArtifactStore. Paths listed
// in Objects resolve; everything else is ErrArtifactNotFound.
type FakeArtifactStore struct {
	Objects map[string]bool
	Err     error

	mu    sync.Mutex
	Calls []string
}

// NewFakeArtifactStore returns a store holding the given object paths
func NewFakeArtifactStore(paths ...string) *FakeArtifactStore {
	s := &FakeArtifactStore{Objects: make(map[string]bool)}
	for _, p := range paths {
		s.Objects[p] = true
	}
	return s
}

func (s *FakeArtifactStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, path)
	s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}
	if !s.Objects[path] {
		return "", download.ErrArtifactNotFound
	}
	return fmt.Sprintf("https://storage.test/%s?expires=%d", path, int(ttl.Seconds())), nil
}

func (s *FakeArtifactStore) Name() string {
	return "fake"
}
