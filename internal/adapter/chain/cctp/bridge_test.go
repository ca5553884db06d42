package cctp

import (
	"context"
	"encoding/hex"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known test key, never used on a real network.
const testSignerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// fakeChain mines every broadcast transaction instantly. receiptFor lets a
// test attach logs to the nth transaction.
type fakeChain struct {
	sent       []*types.Transaction
	receipts   map[common.Hash]*types.Receipt
	receiptFor func(index int, tx *types.Transaction) *types.Receipt
}

func newFakeChain() *fakeChain {
	return &fakeChain{receipts: make(map[common.Hash]*types.Receipt)}
}

func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeChain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (f *fakeChain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(100_000_000), nil
}

func (f *fakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 150_000, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}
	if f.receiptFor != nil {
		receipt = f.receiptFor(len(f.sent), tx)
	}
	f.receipts[tx.Hash()] = receipt
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func messageSentLog(t *testing.T, transmitter common.Address, message []byte) *types.Log {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(transmitterABIJSON))
	require.NoError(t, err)
	data, err := parsed.Events["MessageSent"].Inputs.Pack(message)
	require.NoError(t, err)
	return &types.Log{
		Address: transmitter,
		Topics:  []common.Hash{parsed.Events["MessageSent"].ID},
		Data:    data,
	}
}

func newTestBridge(t *testing.T, source, dest *fakeChain, attestationURL string) *Bridge {
	t.Helper()
	b, err := NewBridge(Config{
		Source: Endpoint{
			ChainID:            5042002,
			Client:             source,
			USDC:               common.HexToAddress("0x4444444444444444444444444444444444444444"),
			TokenMessenger:     common.HexToAddress("0x5555555555555555555555555555555555555555"),
			MessageTransmitter: common.HexToAddress("0x6666666666666666666666666666666666666666"),
			Domain:             0,
		},
		Destinations: []Endpoint{{
			ChainID:            84532,
			Client:             dest,
			USDC:               common.HexToAddress("0x7777777777777777777777777777777777777777"),
			TokenMessenger:     common.HexToAddress("0x8888888888888888888888888888888888888888"),
			MessageTransmitter: common.HexToAddress("0x9999999999999999999999999999999999999999"),
			Domain:             6,
		}},
		SignerKeyHex:       testSignerKey,
		TokenDecimals:      6,
		AttestationURL:     attestationURL,
		AttestationTimeout: 2 * time.Second,
		PollInterval:       10 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	return b
}

func TestBridge_Transfer(t *testing.T) {
	message := []byte("cctp-message-bytes")
	transmitter := common.HexToAddress("0x6666666666666666666666666666666666666666")

	source := newFakeChain()
	source.receiptFor = func(index int, _ *types.Transaction) *types.Receipt {
		receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}
		if index == 1 { // the burn
			receipt.Logs = []*types.Log{messageSentLog(t, transmitter, message)}
		}
		return receipt
	}
	dest := newFakeChain()

	// First poll reports pending, second completes.
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v1/attestations/0x"))
		if polls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"status":"pending_confirmations"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"complete","attestation":"0xdeadbeef"}`))
	}))
	defer server.Close()

	b := newTestBridge(t, source, dest, server.URL)

	outcome, err := b.Transfer(context.Background(), ports.BridgeTransfer{
		Amount:             decimal.RequireFromString("200"),
		RecipientAddress:   "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		DestinationChainID: 84532,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BridgeStateSuccess, outcome.State)
	require.Len(t, outcome.Steps, 3)
	assert.Equal(t, "approve", outcome.Steps[0].Name)
	assert.Equal(t, "burn", outcome.Steps[1].Name)
	assert.Equal(t, "mint", outcome.Steps[2].Name)
	assert.Equal(t, int64(5042002), outcome.Steps[1].ChainID)
	assert.Equal(t, int64(84532), outcome.Steps[2].ChainID)

	// The ledger reference is the burn hash.
	assert.Equal(t, outcome.Steps[1].TxHash, outcome.Reference())
	assert.Equal(t, outcome.SourceTxHash, outcome.Steps[1].TxHash)

	// approve + burn on the source, mint on the destination.
	assert.Len(t, source.sent, 2)
	require.Len(t, dest.sent, 1)
	assert.Equal(t, "0x9999999999999999999999999999999999999999", dest.sent[0].To().Hex())
}

func TestBridge_Transfer_UnsupportedChain(t *testing.T) {
	b := newTestBridge(t, newFakeChain(), newFakeChain(), "http://unused")

	outcome, err := b.Transfer(context.Background(), ports.BridgeTransfer{
		Amount:             decimal.NewFromInt(1),
		RecipientAddress:   "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		DestinationChainID: 10,
	})
	require.Error(t, err)
	assert.Equal(t, "failed", outcome.State)
	assert.Equal(t, domain.PendingReference, outcome.Reference())
}

func TestBridge_Transfer_AttestationTimeoutKeepsBurnHash(t *testing.T) {
	message := []byte("never-attested")
	transmitter := common.HexToAddress("0x6666666666666666666666666666666666666666")

	source := newFakeChain()
	source.receiptFor = func(index int, _ *types.Transaction) *types.Receipt {
		receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}
		if index == 1 {
			receipt.Logs = []*types.Log{messageSentLog(t, transmitter, message)}
		}
		return receipt
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	b := newTestBridge(t, source, newFakeChain(), server.URL)
	b.attestationTimeout = 50 * time.Millisecond

	outcome, err := b.Transfer(context.Background(), ports.BridgeTransfer{
		Amount:             decimal.NewFromInt(5),
		RecipientAddress:   "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		DestinationChainID: 84532,
	})
	require.Error(t, err)
	assert.Equal(t, "failed", outcome.State)
	// Burn succeeded before the attestation stalled; the reference survives.
	assert.NotEqual(t, domain.PendingReference, outcome.Reference())
	assert.Equal(t, outcome.SourceTxHash, outcome.Reference())
}

func TestBridge_Transfer_MissingMessageSentEvent(t *testing.T) {
	source := newFakeChain() // receipts carry no logs
	b := newTestBridge(t, source, newFakeChain(), "http://unused")

	outcome, err := b.Transfer(context.Background(), ports.BridgeTransfer{
		Amount:             decimal.NewFromInt(5),
		RecipientAddress:   "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		DestinationChainID: 84532,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MessageSent")
	assert.Equal(t, "failed", outcome.State)
}

func TestAddressToBytes32(t *testing.T) {
	addr := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72")
	packed := addressToBytes32(addr)

	assert.Equal(t, strings.Repeat("00", 12)+strings.ToLower(hex.EncodeToString(addr.Bytes())),
		hex.EncodeToString(packed[:]))
}
