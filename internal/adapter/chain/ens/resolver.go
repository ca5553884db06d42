package ens

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

const registryABIJSON = `[
	{"name":"resolver","type":"function","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

const resolverABIJSON = `[
	{"name":"name","type":"function","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"string"}]},
	{"name":"addr","type":"function","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"name":"text","type":"function","stateMutability":"view",
	 "inputs":[{"name":"node","type":"bytes32"},{"name":"key","type":"string"}],
	 "outputs":[{"name":"","type":"string"}]}
]`

// Resolver reads names and text records from the ENS registry. It implements
// ports.NameRegistry with plain eth_call reads; nothing here signs or spends.
type Resolver struct {
	client      ethereum.ContractCaller
	registry    common.Address
	registryABI abi.ABI
	resolverABI abi.ABI
	log         zerolog.Logger
}

// NewResolver creates a Resolver against the given registry contract.
func NewResolver(client ethereum.ContractCaller, registryAddress string, log zerolog.Logger) (*Resolver, error) {
	if !common.IsHexAddress(registryAddress) {
		return nil, fmt.Errorf("invalid registry address %q", registryAddress)
	}
	registryABI, err := abi.JSON(strings.NewReader(registryABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing registry abi: %w", err)
	}
	resolverABI, err := abi.JSON(strings.NewReader(resolverABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing resolver abi: %w", err)
	}
	return &Resolver{
		client:      client,
		registry:    common.HexToAddress(registryAddress),
		registryABI: registryABI,
		resolverABI: resolverABI,
		log:         log,
	}, nil
}

// ReverseResolve maps a wallet address to its primary ENS name. The resolved
// name is verified by forward resolution before it is trusted: a reverse
// record anyone can set, the forward record only the name's owner can.
func (r *Resolver) ReverseResolve(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid wallet address %q", address)
	}
	addr := common.HexToAddress(address)

	reverseName := strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse"
	node := Namehash(reverseName)

	resolverAddr, err := r.resolverFor(ctx, node)
	if err != nil {
		return "", err
	}
	if resolverAddr == (common.Address{}) {
		return "", nil
	}

	name, err := r.callName(ctx, resolverAddr, node)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", nil
	}

	forward, err := r.forwardResolve(ctx, name)
	if err != nil {
		return "", err
	}
	if forward != addr {
		r.log.Debug().Str("name", name).Str("address", address).Msg("reverse record failed forward verification")
		return "", nil
	}
	return name, nil
}

// TextRecord reads a text record under a name. Returns "" when the name has no
// resolver or the record is unset.
func (r *Resolver) TextRecord(ctx context.Context, name string, key string) (string, error) {
	node := Namehash(name)

	resolverAddr, err := r.resolverFor(ctx, node)
	if err != nil {
		return "", err
	}
	if resolverAddr == (common.Address{}) {
		return "", nil
	}

	data, err := r.resolverABI.Pack("text", node, key)
	if err != nil {
		return "", fmt.Errorf("packing text call: %w", err)
	}
	out, err := r.call(ctx, resolverAddr, data)
	if err != nil {
		return "", fmt.Errorf("reading text record %q for %q: %w", key, name, err)
	}

	var value string
	if err := r.resolverABI.UnpackIntoInterface(&value, "text", out); err != nil {
		return "", fmt.Errorf("unpacking text record: %w", err)
	}
	return value, nil
}

func (r *Resolver) resolverFor(ctx context.Context, node common.Hash) (common.Address, error) {
	data, err := r.registryABI.Pack("resolver", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("packing resolver call: %w", err)
	}
	out, err := r.call(ctx, r.registry, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("reading resolver from registry: %w", err)
	}

	var resolverAddr common.Address
	if err := r.registryABI.UnpackIntoInterface(&resolverAddr, "resolver", out); err != nil {
		return common.Address{}, fmt.Errorf("unpacking resolver address: %w", err)
	}
	return resolverAddr, nil
}

func (r *Resolver) callName(ctx context.Context, resolverAddr common.Address, node common.Hash) (string, error) {
	data, err := r.resolverABI.Pack("name", node)
	if err != nil {
		return "", fmt.Errorf("packing name call: %w", err)
	}
	out, err := r.call(ctx, resolverAddr, data)
	if err != nil {
		return "", fmt.Errorf("reading reverse name: %w", err)
	}

	var name string
	if err := r.resolverABI.UnpackIntoInterface(&name, "name", out); err != nil {
		return "", fmt.Errorf("unpacking reverse name: %w", err)
	}
	return name, nil
}

func (r *Resolver) forwardResolve(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(name)

	resolverAddr, err := r.resolverFor(ctx, node)
	if err != nil {
		return common.Address{}, err
	}
	if resolverAddr == (common.Address{}) {
		return common.Address{}, nil
	}

	data, err := r.resolverABI.Pack("addr", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("packing addr call: %w", err)
	}
	out, err := r.call(ctx, resolverAddr, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("forward resolving %q: %w", name, err)
	}

	var addr common.Address
	if err := r.resolverABI.UnpackIntoInterface(&addr, "addr", out); err != nil {
		return common.Address{}, fmt.Errorf("unpacking forward address: %w", err)
	}
	return addr, nil
}

func (r *Resolver) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return r.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

// Namehash implements the ENS name hashing algorithm (EIP-137).
func Namehash(name string) common.Hash {
	node := make([]byte, 32)
	if name == "" {
		return common.BytesToHash(node)
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256(node, labelHash)
	}
	return common.BytesToHash(node)
}
