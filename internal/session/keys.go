package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keyLength = 32

// Keys are the independent keys expanded from SESSION_SECRET
type Keys struct {
	Hash  []byte // securecookie HMAC
	Block []byte // securecookie AES
	CSRF  []byte // CSRF token HMAC
}

// DeriveKeys expands one secret into a separate key for each purpose
func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, errors.New("session secret is empty")
	}

	var keys Keys
	for _, k := range []struct {
		dst  *[]byte
		info string
	}{
		{&keys.Hash, "familytravel session hash key"},
		{&keys.Block, "familytravel session block key"},
		{&keys.CSRF, "familytravel csrf key"},
	} {
		key, err := expand(secret, k.info)
		if err != nil {
			return Keys{}, err
		}
		*k.dst = key
	}
	return keys, nil
}

func expand(secret, info string) ([]byte, error) {
	key := make([]byte, keyLength)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return key, nil
}
