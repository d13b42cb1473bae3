package checkout

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"boltform_back_end/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	createFn func(ctx context.Context, req SessionRequest) (string, error)
	calls    []SessionRequest
}

func (f *fakeSessions) Create(ctx context.Context, req SessionRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return "https://pay.example.com/s/cs_test_1", nil
}

func newTestInitiator(t *testing.T, sessions PaymentSessions) (*Initiator, *token.Service) {
	t.Helper()
	tokens, err := token.NewService([]byte("test-secret"))
	require.NoError(t, err)
	return NewInitiator(tokens, sessions, "https://shop.example.com/", "usd", 30*time.Minute), tokens
}

func TestInitiateBuildsLineItemsInMinorUnits(t *testing.T) {
	sessions := &fakeSessions{}
	in, _ := newTestInitiator(t, sessions)

	res, err := in.Initiate(context.Background(), []Item{{Price: 19.999, Title: "A", Quantity: 2}}, Buyer{})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/cs_test_1", res.URL)

	require.Len(t, sessions.calls, 1)
	req := sessions.calls[0]
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, []LineItem{{Name: "A", UnitAmount: 2000, Quantity: 2}}, req.LineItems)
}

func TestInitiateSuccessAndCancelURLs(t *testing.T) {
	sessions := &fakeSessions{}
	in, tokens := newTestInitiator(t, sessions)

	_, err := in.Initiate(context.Background(),
		[]Item{{Price: 5, Title: "Mug", Quantity: 1}},
		Buyer{ID: "6651f0c2a1b2c3d4e5f60718", Name: "Ada"})
	require.NoError(t, err)

	req := sessions.calls[0]
	assert.Equal(t, "https://shop.example.com/cart", req.CancelURL)

	success, err := url.Parse(req.SuccessURL)
	require.NoError(t, err)
	assert.Equal(t, "/success", success.Path)

	claims, err := tokens.Verify(success.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.String("name"))
	assert.Equal(t, "6651f0c2a1b2c3d4e5f60718", claims.String("userId"))
}

func TestInitiateDefaultsAnonymousBuyer(t *testing.T) {
	sessions := &fakeSessions{}
	in, tokens := newTestInitiator(t, sessions)

	_, err := in.Initiate(context.Background(), []Item{{Price: 1, Title: "Pin", Quantity: 3}}, Buyer{})
	require.NoError(t, err)

	success, err := url.Parse(sessions.calls[0].SuccessURL)
	require.NoError(t, err)
	claims, err := tokens.Verify(success.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, AnonymousUserID, claims.String("userId"))
	assert.Equal(t, DefaultName, claims.String("name"))
}

func TestInitiateRejectsInvalidCartBeforeCallingProvider(t *testing.T) {
	cases := map[string][]Item{
		"empty":         nil,
		"no title":      {{Price: 1, Quantity: 1}},
		"zero price":    {{Price: 0, Title: "A", Quantity: 1}},
		"negative":      {{Price: -3, Title: "A", Quantity: 1}},
		"zero quantity": {{Price: 1, Title: "A", Quantity: 0}},
		"second line":   {{Price: 1, Title: "A", Quantity: 1}, {Price: 1, Title: "", Quantity: 1}},
		"sub-cent":      {{Price: 0.001, Title: "A", Quantity: 1}},
	}

	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			sessions := &fakeSessions{}
			in, _ := newTestInitiator(t, sessions)

			_, err := in.Initiate(context.Background(), items, Buyer{})
			var invalid *InvalidCartError
			require.ErrorAs(t, err, &invalid)
			assert.Empty(t, sessions.calls)
		})
	}
}

func TestInitiateSurfacesProviderFailure(t *testing.T) {
	sessions := &fakeSessions{createFn: func(context.Context, SessionRequest) (string, error) {
		return "", errors.New("No such price")
	}}
	in, _ := newTestInitiator(t, sessions)

	_, err := in.Initiate(context.Background(), []Item{{Price: 2, Title: "A", Quantity: 1}}, Buyer{})
	var sessErr *CheckoutSessionError
	require.ErrorAs(t, err, &sessErr)
	assert.Equal(t, "No such price", sessErr.Message)
	assert.Len(t, sessions.calls, 1)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2000), MinorUnits(19.999))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(1), MinorUnits(0.005))
	assert.Equal(t, int64(100), MinorUnits(1))
}
