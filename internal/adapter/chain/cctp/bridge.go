package cctp

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"payrolled/internal/adapter/chain/settlement"
	"payrolled/internal/core/domain"
	"payrolled/internal/core/ports"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

const erc20ABIJSON = `[
	{"name":"approve","type":"function","stateMutability":"nonpayable",
	 "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

const messengerABIJSON = `[
	{"name":"depositForBurn","type":"function","stateMutability":"nonpayable",
	 "inputs":[{"name":"amount","type":"uint256"},{"name":"destinationDomain","type":"uint32"},
	           {"name":"mintRecipient","type":"bytes32"},{"name":"burnToken","type":"address"}],
	 "outputs":[{"name":"nonce","type":"uint64"}]}
]`

const transmitterABIJSON = `[
	{"name":"receiveMessage","type":"function","stateMutability":"nonpayable",
	 "inputs":[{"name":"message","type":"bytes"},{"name":"attestation","type":"bytes"}],
	 "outputs":[{"name":"success","type":"bool"}]},
	{"name":"MessageSent","type":"event","anonymous":false,
	 "inputs":[{"name":"message","type":"bytes","indexed":false}]}
]`

// Endpoint is one CCTP-enabled chain: its RPC client and contract addresses.
type Endpoint struct {
	ChainID            int64
	Client             settlement.Backend
	USDC               common.Address
	TokenMessenger     common.Address
	MessageTransmitter common.Address
	Domain             uint32
}

// Bridge implements ports.BridgeClient over Circle's CCTP rails: burn USDC on
// the source chain, wait for Circle's attestation, mint on the destination.
// Every error path still returns the outcome accumulated so far, so the caller
// can keep the burn hash for the ledger even when the mint never lands.
type Bridge struct {
	source             Endpoint
	destinations       map[int64]Endpoint
	signerKey          *ecdsa.PrivateKey
	from               common.Address
	tokenDecimals      int32
	attestationURL     string
	attestationTimeout time.Duration
	pollInterval       time.Duration
	httpClient         *http.Client
	erc20ABI           abi.ABI
	messengerABI       abi.ABI
	transmitterABI     abi.ABI
	log                zerolog.Logger
}

// Config holds bridge construction parameters.
type Config struct {
	Source             Endpoint
	Destinations       []Endpoint
	SignerKeyHex       string
	TokenDecimals      int32
	AttestationURL     string
	AttestationTimeout time.Duration
	PollInterval       time.Duration
}

// NewBridge creates a new CCTP bridge client.
func NewBridge(cfg Config, log zerolog.Logger) (*Bridge, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.SignerKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing signer key: %w", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing erc20 abi: %w", err)
	}
	messengerABI, err := abi.JSON(strings.NewReader(messengerABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing token messenger abi: %w", err)
	}
	transmitterABI, err := abi.JSON(strings.NewReader(transmitterABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing message transmitter abi: %w", err)
	}

	destinations := make(map[int64]Endpoint, len(cfg.Destinations))
	for _, d := range cfg.Destinations {
		destinations[d.ChainID] = d
	}

	return &Bridge{
		source:             cfg.Source,
		destinations:       destinations,
		signerKey:          key,
		from:               crypto.PubkeyToAddress(key.PublicKey),
		tokenDecimals:      cfg.TokenDecimals,
		attestationURL:     strings.TrimRight(cfg.AttestationURL, "/"),
		attestationTimeout: cfg.AttestationTimeout,
		pollInterval:       cfg.PollInterval,
		httpClient:         &http.Client{Timeout: 30 * time.Second},
		erc20ABI:           erc20ABI,
		messengerABI:       messengerABI,
		transmitterABI:     transmitterABI,
		log:                log,
	}, nil
}

// Transfer executes one burn-attest-mint cycle for a single recipient.
func (b *Bridge) Transfer(ctx context.Context, transfer ports.BridgeTransfer) (*domain.BridgeOutcome, error) {
	outcome := &domain.BridgeOutcome{State: "failed"}

	dest, ok := b.destinations[transfer.DestinationChainID]
	if !ok {
		return outcome, fmt.Errorf("unsupported destination chain %d", transfer.DestinationChainID)
	}
	if !common.IsHexAddress(transfer.RecipientAddress) {
		return outcome, fmt.Errorf("invalid recipient address %q", transfer.RecipientAddress)
	}
	recipient := common.HexToAddress(transfer.RecipientAddress)

	units, err := settlement.ToBaseUnits(transfer.Amount, b.tokenDecimals)
	if err != nil {
		return outcome, err
	}

	// Approve the exact transfer amount; no standing allowance is left behind.
	approveData, err := b.erc20ABI.Pack("approve", b.source.TokenMessenger, units)
	if err != nil {
		return outcome, fmt.Errorf("packing approve: %w", err)
	}
	approveHash, _, err := b.sendAndWait(ctx, b.source, b.source.USDC, approveData)
	if err != nil {
		return outcome, fmt.Errorf("approving token messenger: %w", err)
	}
	outcome.Steps = append(outcome.Steps, domain.BridgeStep{
		Name: "approve", TxHash: approveHash.Hex(), ChainID: b.source.ChainID,
	})

	burnData, err := b.messengerABI.Pack("depositForBurn", units, dest.Domain, addressToBytes32(recipient), b.source.USDC)
	if err != nil {
		return outcome, fmt.Errorf("packing depositForBurn: %w", err)
	}
	burnHash, burnReceipt, err := b.sendAndWait(ctx, b.source, b.source.TokenMessenger, burnData)
	if err != nil {
		return outcome, fmt.Errorf("burning on source chain: %w", err)
	}
	outcome.SourceTxHash = burnHash.Hex()
	outcome.Steps = append(outcome.Steps, domain.BridgeStep{
		Name: "burn", TxHash: burnHash.Hex(), ChainID: b.source.ChainID,
	})

	message, err := b.extractMessage(burnReceipt)
	if err != nil {
		return outcome, err
	}

	attestation, err := b.awaitAttestation(ctx, message)
	if err != nil {
		return outcome, fmt.Errorf("awaiting attestation: %w", err)
	}

	mintData, err := b.transmitterABI.Pack("receiveMessage", message, attestation)
	if err != nil {
		return outcome, fmt.Errorf("packing receiveMessage: %w", err)
	}
	mintHash, _, err := b.sendAndWait(ctx, dest, dest.MessageTransmitter, mintData)
	if err != nil {
		return outcome, fmt.Errorf("minting on destination chain: %w", err)
	}
	outcome.Steps = append(outcome.Steps, domain.BridgeStep{
		Name: "mint", TxHash: mintHash.Hex(), ChainID: dest.ChainID,
	})
	outcome.State = domain.BridgeStateSuccess

	b.log.Info().
		Str("burn_tx", burnHash.Hex()).
		Str("mint_tx", mintHash.Hex()).
		Int64("destination", dest.ChainID).
		Msg("bridge transfer completed")

	return outcome, nil
}

// sendAndWait signs, broadcasts and waits for one transaction on the given
// endpoint, returning its hash and receipt.
func (b *Bridge) sendAndWait(ctx context.Context, ep Endpoint, to common.Address, data []byte) (common.Hash, *types.Receipt, error) {
	nonce, err := ep.Client.PendingNonceAt(ctx, b.from)
	if err != nil {
		return common.Hash{}, nil, fmt.Errorf("fetching nonce: %w", err)
	}
	head, err := ep.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, nil, fmt.Errorf("fetching head: %w", err)
	}
	tipCap, err := ep.Client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, nil, fmt.Errorf("fetching tip cap: %w", err)
	}
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	gasLimit, err := ep.Client.EstimateGas(ctx, ethereum.CallMsg{From: b.from, To: &to, Data: data})
	if err != nil {
		return common.Hash{}, nil, fmt.Errorf("estimating gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(ep.ChainID),
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(ep.ChainID)), b.signerKey)
	if err != nil {
		return common.Hash{}, nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := ep.Client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	receipt, err := b.waitReceipt(ctx, ep, signed.Hash())
	if err != nil {
		return signed.Hash(), nil, err
	}
	return signed.Hash(), receipt, nil
}

func (b *Bridge) waitReceipt(ctx context.Context, ep Endpoint, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, b.attestationTimeout)
	defer cancel()

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := ep.Client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return nil, fmt.Errorf("transaction %s reverted", hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			b.log.Debug().Err(err).Str("tx_hash", hash.Hex()).Msg("receipt poll failed, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// extractMessage pulls the CCTP message bytes out of the MessageSent event the
// transmitter emits during depositForBurn.
func (b *Bridge) extractMessage(receipt *types.Receipt) ([]byte, error) {
	topic := b.transmitterABI.Events["MessageSent"].ID
	for _, lg := range receipt.Logs {
		if lg.Address != b.source.MessageTransmitter {
			continue
		}
		if len(lg.Topics) == 0 || lg.Topics[0] != topic {
			continue
		}
		var message []byte
		if err := b.transmitterABI.UnpackIntoInterface(&message, "MessageSent", lg.Data); err != nil {
			return nil, fmt.Errorf("unpacking MessageSent: %w", err)
		}
		return message, nil
	}
	return nil, errors.New("no MessageSent event in burn receipt")
}

type attestationResponse struct {
	Status      string `json:"status"`
	Attestation string `json:"attestation"`
}

// awaitAttestation polls Circle's attestation service until the burn message
// is attested or the timeout elapses.
func (b *Bridge) awaitAttestation(ctx context.Context, message []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.attestationTimeout)
	defer cancel()

	messageHash := crypto.Keccak256Hash(message)
	url := fmt.Sprintf("%s/v1/attestations/%s", b.attestationURL, messageHash.Hex())

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		attestation, ready, err := b.fetchAttestation(ctx, url)
		if err != nil {
			b.log.Debug().Err(err).Str("message_hash", messageHash.Hex()).Msg("attestation poll failed, retrying")
		} else if ready {
			return attestation, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("attestation for %s timed out: %w", messageHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (b *Bridge) fetchAttestation(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	// 404 means the service has not seen the message yet.
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("attestation service returned %s", resp.Status)
	}

	var body attestationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("decoding attestation response: %w", err)
	}
	if body.Status != "complete" {
		return nil, false, nil
	}

	attestation, err := hex.DecodeString(strings.TrimPrefix(body.Attestation, "0x"))
	if err != nil {
		return nil, false, fmt.Errorf("decoding attestation hex: %w", err)
	}
	return attestation, true, nil
}

// addressToBytes32 left-pads an EVM address to the 32-byte recipient form CCTP
// uses.
func addressToBytes32(addr common.Address) [32]byte {
	var out [32]byte
	copy(out[12:], addr.Bytes())
	return out
}
