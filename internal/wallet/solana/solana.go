// Package solana is the SOL transactional wallet. Every payment gets a fresh
// ed25519 keypair, so no memo is needed to tell payments apart.
package solana

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cryptogate/internal/domain"
	"github.com/josh-kwaku/cryptogate/internal/wallet"
)

const lamportsExp = -9

// rpcClient is the subset of *rpc.Client the wallet uses.
type rpcClient interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, transaction *solana.Transaction) (solana.Signature, error)
}

type Config struct {
	FeeLamports      uint64
	MinSweepLamports uint64
}

type Wallet struct {
	client rpcClient
	cfg    Config
}

var _ wallet.Wallet = (*Wallet)(nil)

func New(client rpcClient, cfg Config) *Wallet {
	return &Wallet{client: client, cfg: cfg}
}

func NewFromURL(rpcURL string, cfg Config) *Wallet {
	return New(rpc.New(rpcURL), cfg)
}

func (w *Wallet) Currency() domain.Currency { return domain.CurrencySOL }

func (w *Wallet) Generate(_ context.Context, _ wallet.GenerateRequest) (wallet.Credentials, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return wallet.Credentials{}, fmt.Errorf("Generate: %v: %w", err, domain.ErrKeyGeneration)
	}
	return wallet.Credentials{
		PublicKey:  key.PublicKey().String(),
		PrivateKey: domain.NewPrivateKey(key.String()),
	}, nil
}

func (w *Wallet) Inspect(ctx context.Context, publicKey string, _ *string) (wallet.Observation, error) {
	pub, err := solana.PublicKeyFromBase58(publicKey)
	if err != nil {
		return wallet.Observation{}, fmt.Errorf("Inspect: parse address: %w", err)
	}

	received, err := w.balance(ctx, pub, rpc.CommitmentProcessed)
	if err != nil {
		return wallet.Observation{}, fmt.Errorf("Inspect: %w", err)
	}
	confirmed, err := w.balance(ctx, pub, rpc.CommitmentFinalized)
	if err != nil {
		return wallet.Observation{}, fmt.Errorf("Inspect: %w", err)
	}

	return wallet.Observation{
		Received:  lamportsToSOL(received),
		Confirmed: lamportsToSOL(confirmed),
	}, nil
}

func (w *Wallet) Sweep(ctx context.Context, creds wallet.Credentials, adminWallet string) (string, error) {
	key, err := solana.PrivateKeyFromBase58(creds.PrivateKey.Reveal())
	if err != nil {
		return "", fmt.Errorf("Sweep: parse private key: %w", err)
	}
	admin, err := solana.PublicKeyFromBase58(adminWallet)
	if err != nil {
		return "", fmt.Errorf("Sweep: parse admin wallet: %w", err)
	}
	from := key.PublicKey()

	balance, err := w.balance(ctx, from, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("Sweep: %w", err)
	}
	if balance <= w.cfg.FeeLamports+w.cfg.MinSweepLamports {
		return "", fmt.Errorf("Sweep: balance %d lamports: %w", balance, domain.ErrInsufficientFunds)
	}
	lamports := balance - w.cfg.FeeLamports

	recent, err := w.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("Sweep: latest blockhash: %v: %w", err, domain.ErrChainUnavailable)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, admin).Build()},
		recent.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return "", fmt.Errorf("Sweep: build transaction: %w", err)
	}

	if _, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(from) {
			return &key
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("Sweep: sign: %w", err)
	}

	sig, err := w.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("Sweep: send: %v: %w", err, domain.ErrBroadcast)
	}
	return sig.String(), nil
}

func (w *Wallet) balance(ctx context.Context, pub solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	res, err := w.client.GetBalance(ctx, pub, commitment)
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w: %w", commitment, err, domain.ErrChainUnavailable)
	}
	return res.Value, nil
}

func lamportsToSOL(l uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(l), lamportsExp)
}
