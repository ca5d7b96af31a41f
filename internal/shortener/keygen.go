package shortener

import (
	"context"
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	// Alphabet is the character set of generated keys.
	Alphabet = "abcdefghijklmnopqrstuvwxyz"

	DefaultKeyLength   = 5
	DefaultMaxAttempts = 10
	SecretSuffixLength = 8

	// MaxKeyLength is the width of the url_key column.
	MaxKeyLength = 32

	// nanoid reads no entropy for lengths below 5, so shorter codes are cut from a 5-character draw.
	minDrawLength = 5

	secretSeparator = "_"
)

var ErrInvalidKeyLength = fmt.Errorf("key length must be within 1-%d", MaxKeyLength)

// CodeGenerator generates random short codes.
type CodeGenerator func() string

// NewCodeGenerator returns a generator drawing length characters uniformly from Alphabet.
// nanoid reads from crypto/rand.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length < 1 || length > MaxKeyLength {
		return nil, fmt.Errorf("create code generator of length %d: %w", length, ErrInvalidKeyLength)
	}

	gen, err := nanoid.CustomASCII(Alphabet, max(length, minDrawLength))
	if err != nil {
		return nil, fmt.Errorf("create code generator of length %d: %w", length, err)
	}

	if length >= minDrawLength {
		return CodeGenerator(gen), nil
	}

	// Each character is drawn independently, so a prefix is still uniform.
	return func() string {
		return gen()[:length]
	}, nil
}

// GenerateKey returns a single random key of the given length.
func GenerateKey(length int) (string, error) {
	gen, err := NewCodeGenerator(length)
	if err != nil {
		return "", err
	}

	return gen(), nil
}

// KeyChecker reports whether a key is already stored.
type KeyChecker interface {
	KeyExists(ctx context.Context, key Key) (bool, error)
}

// KeyGenerator produces keys that are unique against a KeyChecker and derives secret keys from them.
type KeyGenerator struct {
	generateKey    CodeGenerator
	generateSecret CodeGenerator
	maxAttempts    int
}

// NewKeyGenerator creates a generator for keys of keyLength letters.
// maxAttempts bounds the number of candidates tried per unique key.
func NewKeyGenerator(keyLength, maxAttempts int) (*KeyGenerator, error) {
	keyGen, err := NewCodeGenerator(keyLength)
	if err != nil {
		return nil, err
	}

	secretGen, err := NewCodeGenerator(SecretSuffixLength)
	if err != nil {
		return nil, err
	}

	return NewKeyGeneratorFrom(keyGen, secretGen, maxAttempts), nil
}

// NewKeyGeneratorFrom builds a KeyGenerator around existing code generators.
func NewKeyGeneratorFrom(keyGen, secretGen CodeGenerator, maxAttempts int) *KeyGenerator {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	return &KeyGenerator{
		generateKey:    keyGen,
		generateSecret: secretGen,
		maxAttempts:    maxAttempts,
	}
}

// MaxAttempts returns the attempt budget per unique key.
func (g *KeyGenerator) MaxAttempts() int {
	return g.maxAttempts
}

// UniqueKey draws keys until one is not known to store.
// It gives up with ErrKeySpaceExhausted after MaxAttempts collisions.
func (g *KeyGenerator) UniqueKey(ctx context.Context, store KeyChecker) (Key, error) {
	for range g.maxAttempts {
		key, free, err := g.candidate(ctx, store)
		if err != nil {
			return "", err
		}

		if free {
			return key, nil
		}
	}

	return "", ErrKeySpaceExhausted
}

// candidate draws one key and reports whether store does not know it yet.
func (g *KeyGenerator) candidate(ctx context.Context, store KeyChecker) (Key, bool, error) {
	key := Key(g.generateKey())

	exists, err := store.KeyExists(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("check key %q: %w", key, err)
	}

	return key, !exists, nil
}

// SecretFor derives the secret key for key. Uniqueness follows from the key being unique.
func (g *KeyGenerator) SecretFor(key Key) SecretKey {
	return SecretKey(string(key) + secretSeparator + g.generateSecret())
}
