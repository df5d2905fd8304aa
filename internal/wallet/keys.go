// Package wallet derives blinding keys and assembles confidential
// transactions for a single party that knows all values involved.
package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
	"github.com/veilnet/veil-chain/pkg/crypto"
)

// MnemonicEntropyBits is the entropy size for 24-word mnemonics.
const MnemonicEntropyBits = 256

// BIP-44 style derivation path constants for blinding keys.
// Full path: m/44'/CoinTypeVeil'/account'/index'
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44

	// CoinTypeVeil is our (placeholder) coin type (hardened).
	CoinTypeVeil = bip32.FirstHardenedChild + 7447
)

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// KeyManager derives spending keys (blinding factors) along a hardened
// BIP-32 path from a BIP-39 mnemonic. Every derivation step is hardened:
// blinding keys are never exposed as public keys on their own, so there
// is no use for unhardened derivation and no reason to accept its risks.
type KeyManager struct {
	account *bip32.Key
}

// NewKeyManager derives the account-level key m/44'/CoinTypeVeil'/account'
// for the given mnemonic and passphrase.
func NewKeyManager(mnemonic, passphrase string, account uint32) (*KeyManager, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}

	current := master
	for _, idx := range []uint32{PurposeBIP44, CoinTypeVeil, bip32.FirstHardenedChild + account} {
		current, err = current.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive account key: %w", err)
		}
	}
	return &KeyManager{account: current}, nil
}

// SpendingKey derives the blinding factor at the given hardened index.
// The same (mnemonic, passphrase, account, index) always yields the
// same key, so outputs can be re-derived from the seed alone.
func (km *KeyManager) SpendingKey(index uint32) (*crypto.BlindingFactor, error) {
	child, err := km.account.NewChildKey(bip32.FirstHardenedChild + index)
	if err != nil {
		return nil, fmt.Errorf("derive spending key %d: %w", index, err)
	}
	raw := child.Key
	// bip32 private key material carries a leading 0x00 pad when 33 bytes.
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	bf, err := crypto.BlindingFactorFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("spending key %d: %w", index, err)
	}
	return bf, nil
}
