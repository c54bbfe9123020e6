package routing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
)

type stubSigner struct {
	address string
	hash    string
	sendErr error
	sent    []*types.TransactionRequest
}

func (s *stubSigner) GetAddress(ctx context.Context) (string, error) {
	return s.address, nil
}

func (s *stubSigner) SendTransaction(ctx context.Context, req *types.TransactionRequest) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sent = append(s.sent, req)
	return s.hash, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)
	return client
}

func TestGetRoute(t *testing.T) {
	t.Run("decodes quoted route", func(t *testing.T) {
		var received types.QuoteRequest

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/routes/quote", r.URL.Path)
			require.Equal(t, "test-key", r.Header.Get("x-api-key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			json.NewEncoder(w).Encode(types.Route{
				QuoteID:           "quote-7",
				FromChainID:       "1",
				ToChainID:         "10",
				ToAmount:          "100000000",
				ExecutionDuration: 45,
			})
		})

		route, err := client.GetRoute(context.Background(), &types.QuoteRequest{
			FromChainID: "1",
			ToChainID:   "10",
			FromAmount:  "0.05",
			QuoteOnly:   true,
			Slippage:    2,
		})
		require.NoError(t, err)
		require.Equal(t, "quote-7", route.QuoteID)
		require.Equal(t, 45, route.ExecutionDuration)

		require.Equal(t, "1", received.FromChainID)
		require.True(t, received.QuoteOnly)
		require.Equal(t, float64(2), received.Slippage)
	})

	t.Run("rate limit surfaces as 429", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		})

		_, err := client.GetRoute(context.Background(), &types.QuoteRequest{})
		require.Error(t, err)
		require.True(t, funderrors.IsRateLimited(err))
	})

	t.Run("bad request carries status and body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unknown token", http.StatusBadRequest)
		})

		_, err := client.GetRoute(context.Background(), &types.QuoteRequest{})
		require.Error(t, err)
		require.True(t, funderrors.IsHTTPStatus(err, 400))
		require.Contains(t, err.Error(), "unknown token")
	})
}

func TestSubmitRoute(t *testing.T) {
	t.Run("sends transaction request through signer", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no backend call expected on submission")
		})

		signer := &stubSigner{address: "0xOwner", hash: "0xsubmitted"}
		route := &types.Route{
			QuoteID:     "quote-7",
			FromChainID: "1",
			TransactionRequest: &types.TransactionRequest{
				To:   "0xRouter",
				Data: "0xdeadbeef",
			},
		}

		tx, err := client.SubmitRoute(context.Background(), signer, route)
		require.NoError(t, err)
		require.Equal(t, "0xsubmitted", tx.Hash)
		require.Equal(t, "0xOwner", tx.From)
		require.Equal(t, "0xRouter", tx.To)
		require.Equal(t, "quote-7", tx.QuoteID)
		require.Len(t, signer.sent, 1)
	})

	t.Run("quote only route cannot be submitted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := client.SubmitRoute(context.Background(), &stubSigner{}, &types.Route{QuoteID: "quote-7"})
		require.Error(t, err)
		require.True(t, errors.Is(err, funderrors.ErrRouteExpired))
	})

	t.Run("wallet errors pass through unwrapped", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

		walletErr := errors.New("user rejected the request")
		signer := &stubSigner{sendErr: walletErr}
		route := &types.Route{TransactionRequest: &types.TransactionRequest{To: "0xRouter"}}

		_, err := client.SubmitRoute(context.Background(), signer, route)
		require.ErrorIs(t, err, walletErr)
	})
}

func TestGetSettlementStatus(t *testing.T) {
	t.Run("decodes settlement result", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/routes/status", r.URL.Path)
			require.Equal(t, "0xsubmitted", r.URL.Query().Get("txHash"))
			require.Equal(t, "1", r.URL.Query().Get("fromChain"))
			require.Equal(t, "10", r.URL.Query().Get("toChain"))

			json.NewEncoder(w).Encode(types.SettlementResult{
				Status:   types.SettlementSuccess,
				ToTxHash: "0xdest",
			})
		})

		result, err := client.GetSettlementStatus(context.Background(), "0xsubmitted", "1", "10")
		require.NoError(t, err)
		require.Equal(t, types.SettlementSuccess, result.Status)
		require.Equal(t, "0xdest", result.ToTxHash)
	})

	t.Run("server error is a hard status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		})

		_, err := client.GetSettlementStatus(context.Background(), "0xsubmitted", "1", "10")
		require.Error(t, err)
		require.True(t, funderrors.IsHTTPStatus(err, 500))
	})
}
