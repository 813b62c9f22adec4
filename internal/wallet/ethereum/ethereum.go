// Package ethereum is the ETH transactional wallet. Each payment gets its own
// secp256k1 key; funds count as confirmed once they are Confirmations blocks deep.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/wallet"
)

const (
	weiExp          = -18
	transferGas     = uint64(21000)
	defaultConfirms = uint64(12)
)

// chainClient is the subset of *ethclient.Client the wallet uses.
type chainClient interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingBalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

type Config struct {
	Confirmations uint64
	MinSweepWei   *big.Int
}

type Wallet struct {
	client chainClient
	cfg    Config
}

var _ wallet.Wallet = (*Wallet)(nil)

func New(client chainClient, cfg Config) *Wallet {
	if cfg.Confirmations == 0 {
		cfg.Confirmations = defaultConfirms
	}
	if cfg.MinSweepWei == nil {
		cfg.MinSweepWei = new(big.Int)
	}
	return &Wallet{client: client, cfg: cfg}
}

func Dial(ctx context.Context, rpcURL string, cfg Config) (*Wallet, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("Dial: %w", err)
	}
	return New(client, cfg), nil
}

func (w *Wallet) Currency() domain.Currency { return domain.CurrencyETH }

func (w *Wallet) Generate(_ context.Context, _ wallet.GenerateRequest) (wallet.Credentials, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return wallet.Credentials{}, fmt.Errorf("Generate: %v: %w", err, domain.ErrKeyGeneration)
	}
	return wallet.Credentials{
		PublicKey:  crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: domain.NewPrivateKey(hex.EncodeToString(crypto.FromECDSA(key))),
	}, nil
}

func (w *Wallet) Inspect(ctx context.Context, publicKey string, _ *string) (wallet.Observation, error) {
	if !common.IsHexAddress(publicKey) {
		return wallet.Observation{}, fmt.Errorf("Inspect: invalid address %q", publicKey)
	}
	addr := common.HexToAddress(publicKey)

	pending, err := w.client.PendingBalanceAt(ctx, addr)
	if err != nil {
		return wallet.Observation{}, fmt.Errorf("Inspect: pending balance: %w: %w", err, domain.ErrChainUnavailable)
	}

	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return wallet.Observation{}, fmt.Errorf("Inspect: block number: %w: %w", err, domain.ErrChainUnavailable)
	}

	confirmed := new(big.Int)
	if head >= w.cfg.Confirmations {
		at := new(big.Int).SetUint64(head - w.cfg.Confirmations)
		confirmed, err = w.client.BalanceAt(ctx, addr, at)
		if err != nil {
			return wallet.Observation{}, fmt.Errorf("Inspect: balance at %s: %w: %w", at, err, domain.ErrChainUnavailable)
		}
	}

	return wallet.Observation{
		Received:  weiToETH(pending),
		Confirmed: weiToETH(confirmed),
	}, nil
}

func (w *Wallet) Sweep(ctx context.Context, creds wallet.Credentials, adminWallet string) (string, error) {
	key, err := crypto.HexToECDSA(creds.PrivateKey.Reveal())
	if err != nil {
		return "", fmt.Errorf("Sweep: parse private key: %w", err)
	}
	if !common.IsHexAddress(adminWallet) {
		return "", fmt.Errorf("Sweep: invalid admin wallet %q", adminWallet)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	to := common.HexToAddress(adminWallet)

	balance, err := w.client.BalanceAt(ctx, from, nil)
	if err != nil {
		return "", fmt.Errorf("Sweep: balance: %w: %w", err, domain.ErrChainUnavailable)
	}
	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("Sweep: gas price: %w: %w", err, domain.ErrChainUnavailable)
	}

	fee := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(transferGas))
	floor := new(big.Int).Add(fee, w.cfg.MinSweepWei)
	if balance.Cmp(floor) <= 0 {
		return "", fmt.Errorf("Sweep: balance %s wei: %w", balance, domain.ErrInsufficientFunds)
	}
	value := new(big.Int).Sub(balance, fee)

	signed, err := w.sign(ctx, key, from, to, value, gasPrice)
	if err != nil {
		return "", fmt.Errorf("Sweep: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("Sweep: send: %w: %w", err, domain.ErrBroadcast)
	}
	return signed.Hash().Hex(), nil
}

func (w *Wallet) sign(ctx context.Context, key *ecdsa.PrivateKey, from, to common.Address, value, gasPrice *big.Int) (*types.Transaction, error) {
	nonce, err := w.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("sign: nonce: %w: %w", err, domain.ErrChainUnavailable)
	}
	chainID, err := w.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("sign: chain id: %w: %w", err, domain.ErrChainUnavailable)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      transferGas,
		GasPrice: gasPrice,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return signed, nil
}

func weiToETH(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, weiExp)
}

// ETHToWei converts a configured ETH amount to wei, truncating below 1 wei.
func ETHToWei(eth decimal.Decimal) *big.Int {
	return eth.Shift(-weiExp).BigInt()
}
