package settlement

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"payrolled/internal/core/ports"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const distributorABIJSON = `[
	{"name":"batchPay","type":"function","stateMutability":"payable",
	 "inputs":[{"name":"recipients","type":"address[]"},{"name":"amounts","type":"uint256[]"}],
	 "outputs":[]}
]`

// Backend is the subset of the Ethereum RPC client the executor needs.
// *ethclient.Client satisfies it.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Executor implements ports.SettlementClient against the on-chain batch
// distributor. One transaction pays every recipient or none: the contract
// reverts as a whole, so partial payment is not expressible here.
type Executor struct {
	client         Backend
	contract       common.Address
	chainID        *big.Int
	signerKey      *ecdsa.PrivateKey
	from           common.Address
	tokenDecimals  int32
	confirmTimeout time.Duration
	pollInterval   time.Duration
	distributorABI abi.ABI
	log            zerolog.Logger

	// Serializes nonce allocation; the treasury key signs nothing else.
	mu sync.Mutex
}

// Config holds executor construction parameters.
type Config struct {
	ContractAddress string
	ChainID         int64
	SignerKeyHex    string
	TokenDecimals   int32
	ConfirmTimeout  time.Duration
	PollInterval    time.Duration
}

// NewExecutor creates a new batch settlement executor.
func NewExecutor(client Backend, cfg Config, log zerolog.Logger) (*Executor, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid distributor address %q", cfg.ContractAddress)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.SignerKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing signer key: %w", err)
	}
	distributorABI, err := abi.JSON(strings.NewReader(distributorABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing distributor abi: %w", err)
	}

	return &Executor{
		client:         client,
		contract:       common.HexToAddress(cfg.ContractAddress),
		chainID:        big.NewInt(cfg.ChainID),
		signerKey:      key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		tokenDecimals:  cfg.TokenDecimals,
		confirmTimeout: cfg.ConfirmTimeout,
		pollInterval:   cfg.PollInterval,
		distributorABI: distributorABI,
		log:            log,
	}, nil
}

// SubmitBatch signs and broadcasts one batchPay transaction carrying the exact
// total as its value. Payee order is preserved.
func (e *Executor) SubmitBatch(ctx context.Context, payees []ports.Payee) (*ports.BatchHandle, error) {
	if len(payees) == 0 {
		return nil, errors.New("empty batch")
	}

	recipients := make([]common.Address, 0, len(payees))
	amounts := make([]*big.Int, 0, len(payees))
	total := new(big.Int)
	for _, p := range payees {
		if !common.IsHexAddress(p.Address) {
			return nil, fmt.Errorf("invalid payee address %q", p.Address)
		}
		units, err := ToBaseUnits(p.Amount, e.tokenDecimals)
		if err != nil {
			return nil, fmt.Errorf("payee %s: %w", p.Address, err)
		}
		recipients = append(recipients, common.HexToAddress(p.Address))
		amounts = append(amounts, units)
		total.Add(total, units)
	}

	data, err := e.distributorABI.Pack("batchPay", recipients, amounts)
	if err != nil {
		return nil, fmt.Errorf("packing batchPay: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	nonce, err := e.client.PendingNonceAt(ctx, e.from)
	if err != nil {
		return nil, fmt.Errorf("fetching nonce: %w", err)
	}
	head, err := e.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching head: %w", err)
	}
	tipCap, err := e.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tip cap: %w", err)
	}
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	gasLimit, err := e.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  e.from,
		To:    &e.contract,
		Value: total,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("estimating gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   e.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &e.contract,
		Value:     total,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(e.chainID), e.signerKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := e.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	e.log.Info().
		Str("tx_hash", signed.Hash().Hex()).
		Int("recipients", len(recipients)).
		Str("total_units", total.String()).
		Msg("batch payment broadcast")

	return &ports.BatchHandle{TxHash: signed.Hash().Hex()}, nil
}

// AwaitConfirmation polls for the receipt until the transaction mines or the
// confirmation timeout elapses. A reverted receipt is an error: the batch is
// all-or-nothing and a revert means nobody was paid.
func (e *Executor) AwaitConfirmation(ctx context.Context, handle *ports.BatchHandle) (*ports.BatchReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()

	hash := common.HexToHash(handle.TxHash)
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := e.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return nil, fmt.Errorf("transaction %s reverted", handle.TxHash)
			}
			return &ports.BatchReceipt{
				TxHash:      handle.TxHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			e.log.Debug().Err(err).Str("tx_hash", handle.TxHash).Msg("receipt poll failed, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("confirmation of %s timed out: %w", handle.TxHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// ToBaseUnits converts a decimal token amount to integer base units. Amounts
// with more precision than the token supports are rejected rather than
// silently truncated.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount %s", amount)
	}
	shifted := amount.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %s exceeds token precision of %d decimals", amount, decimals)
	}
	return shifted.BigInt(), nil
}
