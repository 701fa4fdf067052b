// Package extcrypto provides identifiers, digests and message
// authentication codes. Digests are returned as lowercase hex.
//
// MD5 and SHA-1 are offered for fingerprinting and interoperability
// only.
package extcrypto

import (
	"context"
	"crypto/hmac"
	"crypto/md5"  //nolint:gosec // fingerprinting only
	"crypto/sha1" //nolint:gosec // fingerprinting only
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/google/uuid"

	"github.com/sandrolain/jsonata/pkg/functions"
	"github.com/sandrolain/jsonata/pkg/types"
)

// All returns every crypto function definition.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		UUID(),
		Hash(),
		HMAC(),
	}
}

// AllEntries returns All as function entries for jsonata.WithFunctions.
func AllEntries() []functions.FunctionEntry {
	all := All()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

// UUID defines $uuid(), a random version 4 UUID.
func UUID() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "uuid",
		Signature: "<:s>",
		Fn: func(context.Context, ...interface{}) (interface{}, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return nil, fmt.Errorf("$uuid: %w", err)
			}
			return id.String(), nil
		},
	}
}

// Hash defines $hash(str, algorithm) for md5, sha1, sha256, sha384 and
// sha512.
func Hash() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "hash",
		Signature: "<s-s:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			alg, _ := args[1].(string)
			newHash, err := hasher(alg)
			if err != nil {
				return nil, err
			}
			h := newHash()
			h.Write([]byte(str))
			return hex.EncodeToString(h.Sum(nil)), nil
		},
	}
}

// HMAC defines $hmac(str, key, algorithm), with the algorithms of $hash.
func HMAC() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "hmac",
		Signature: "<s-ss:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, nil
			}
			key, _ := args[1].(string)
			alg, _ := args[2].(string)
			newHash, err := hasher(alg)
			if err != nil {
				return nil, err
			}
			mac := hmac.New(newHash, []byte(key))
			mac.Write([]byte(str))
			return hex.EncodeToString(mac.Sum(nil)), nil
		},
	}
}

func hasher(alg string) (func() hash.Hash, error) {
	switch strings.ToLower(alg) {
	case "md5":
		return md5.New, nil
	case "sha1":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	}
	return nil, types.NewError(types.ErrArgumentMismatch,
		fmt.Sprintf("unsupported hash algorithm %q: use md5, sha1, sha256, sha384 or sha512", alg), -1).WithValue(alg)
}
