package chainrpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(method string, params json.RawMessage) (interface{}, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonrpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		paramsRaw, err := json.Marshal(req.Params)
		require.NoError(t, err)

		result, rpcErr := handler(req.Method, paramsRaw)
		resp := jsonrpcResponse{ID: req.ID}
		if rpcErr != nil {
			resp.Error = rpcErr
		} else {
			b, err := json.Marshal(result)
			require.NoError(t, err)
			resp.Result = b
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestGetTipHeight(t *testing.T) {
	srv := newTestServer(t, func(method string, params json.RawMessage) (interface{}, *rpcError) {
		require.Equal(t, "get_info", method)
		return getInfoResult{Height: 1234}, nil
	})
	defer srv.Close()

	c := NewHTTPDaemonClient(srv.URL)
	height, err := c.GetTipHeight()
	require.NoError(t, err)
	require.Equal(t, uint64(1234), height)
}

func TestGetBlocksByHeightFallsBackWhenUnsupported(t *testing.T) {
	srv := newTestServer(t, func(method string, params json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	})
	defer srv.Close()

	c := NewHTTPDaemonClient(srv.URL)
	c.Backoff = Backoff{MaxAttempts: 1}
	blocks, ok, err := c.GetBlocksByHeight([]uint64{1, 2, 3})
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, blocks)
}

func TestGetBlocksByHeightDecodesTransactions(t *testing.T) {
	hash := "11" + strings.Repeat("22", 31)
	txHash := "33" + strings.Repeat("44", 31)

	srv := newTestServer(t, func(method string, params json.RawMessage) (interface{}, *rpcError) {
		require.Equal(t, "get_blocks_by_height", method)
		return getBlocksByHeightResult{
			Blocks: []blockWire{
				{
					Height: 10,
					Hash:   hash,
					MinerTx: &transactionWire{
						TxHash:      txHash,
						BlockHeight: 10,
						TxType:      1,
						AssetType:   "SAL",
					},
				},
			},
		}, nil
	})
	defer srv.Close()

	c := NewHTTPDaemonClient(srv.URL)
	blocks, ok, err := c.GetBlocksByHeight([]uint64{10})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, blocks, 1)
	require.Equal(t, uint64(10), blocks[0].Height)
	require.NotNil(t, blocks[0].MinerTx)
}

func TestSendRawTransactionDecodesReject(t *testing.T) {
	srv := newTestServer(t, func(method string, params json.RawMessage) (interface{}, *rpcError) {
		require.Equal(t, "send_raw_transaction", method)
		return sendRawTransactionResult{Status: "Failed", Reason: "double spend", DoubleSpend: true}, nil
	})
	defer srv.Close()

	c := NewHTTPDaemonClient(srv.URL)
	err := c.SendRawTransaction([]byte{1, 2, 3})
	require.Error(t, err)

	reject, ok := err.(*DaemonReject)
	require.True(t, ok)
	require.True(t, reject.DoubleSpend)
	require.Contains(t, reject.Flags(), RejectDoubleSpend)
}

func TestIsKeyImageSpent(t *testing.T) {
	srv := newTestServer(t, func(method string, params json.RawMessage) (interface{}, *rpcError) {
		require.Equal(t, "is_key_image_spent", method)
		return isKeyImageSpentResult{SpentStatus: []int{0, 1}}, nil
	})
	defer srv.Close()

	c := NewHTTPDaemonClient(srv.URL)
	var kis [][32]byte
	kis = append(kis, [32]byte{}, [32]byte{1})
	spent, err := c.IsKeyImageSpent(kis)
	require.NoError(t, err)
	require.Equal(t, []bool{false, true}, spent)
}

