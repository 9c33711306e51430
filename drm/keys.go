package drm

import (
	"encoding/hex"
	"strings"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util/codec"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const keyLength = 16

// FallbackPolicy decides what happens when no kid qualified key matches.
type FallbackPolicy int

const (
	// FirstValidBareKey returns the first bare key of the response that
	// decodes to 16 bytes. upstream formats are inconsistent, so this is
	// a resilience heuristic and can pick the wrong key on multi key
	// responses.
	FirstValidBareKey FallbackPolicy = iota
	// RejectBareKeys only trusts keys bound to a key id.
	RejectBareKeys
)

var segmentSeparators = "\n\r;|,"

// NormalizeKeyID returns the canonical lowercase hex of a key id given as
// a uuid, as hex or as base64 of either alphabet.
func NormalizeKeyID(raw string) (string, bool) {
	return normalize16(raw)
}

// EnsureHexKey applies the key id acceptance rule to key material.
func EnsureHexKey(raw string) (string, bool) {
	return normalize16(raw)
}

func normalize16(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	// uuid.Parse takes both the dashed form and 32 bare hex chars
	if id, err := uuid.Parse(raw); err == nil {
		return hex.EncodeToString(id[:]), true
	}
	data, err := codec.DecodeBase64(raw)
	if err != nil || len(data) != keyLength {
		return "", false
	}
	return hex.EncodeToString(data), true
}

// ToBase64URL re-encodes a canonical hex key or key id for clearkey urls.
func ToBase64URL(hexKey string) (string, error) {
	return codec.HexToBase64URL(hexKey)
}

// MaskKey keeps the first and last four chars of key material for logs.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

type KeyNormalizer struct {
	Fallback FallbackPolicy
}

type keyPair struct {
	kid string
	key string
}

// NormalizeDecryptionKey digs the content key out of a key exchange
// response whose shape is not fixed: a json object with a keys array, a
// bare json array, a json string or plain "kid:key" text. with a target
// the first pair whose kid matches wins; without one a lone pair is
// accepted. otherwise the fallback policy applies.
func (n *KeyNormalizer) NormalizeDecryptionKey(raw string, target string) (*models.DecryptionKey, bool) {
	if target != "" {
		normalized, ok := NormalizeKeyID(target)
		if !ok {
			zap.S().Warnf("ignoring invalid target key id %q", target)
			target = ""
		} else {
			target = normalized
		}
	}

	text := raw
	if gjson.Valid(raw) {
		value := gjson.Parse(raw)
		switch {
		case value.IsObject():
			entries := value.Get("keys")
			if !entries.Exists() {
				// a single {kid, key} object
				entries = gjson.Parse("[" + value.Raw + "]")
			}
			if pairs, ok := jsonPairs(entries); ok {
				if key, ok := matchPair(pairs, target); ok {
					return key, true
				}
			}
		case value.IsArray():
			if pairs, ok := jsonPairs(value); ok {
				if key, ok := matchPair(pairs, target); ok {
					return key, true
				}
			}
		case value.Type == gjson.String:
			text = value.Str
		}
	}

	pairs, bare := splitSegments(text)
	if key, ok := matchPair(pairs, target); ok {
		return key, true
	}
	if bare != "" && n.fallback() == FirstValidBareKey {
		zap.S().Debug("no key id qualified key matched, using first bare key")
		return &models.DecryptionKey{Key: bare}, true
	}
	return nil, false
}

func (n *KeyNormalizer) fallback() FallbackPolicy {
	if n == nil {
		return FirstValidBareKey
	}
	return n.Fallback
}

func jsonPairs(entries gjson.Result) ([]keyPair, bool) {
	if !entries.IsArray() {
		return nil, false
	}
	var pairs []keyPair
	entries.ForEach(func(_, entry gjson.Result) bool {
		switch {
		case entry.IsObject():
			pairs = append(pairs, keyPair{
				kid: firstField(entry, "kid", "keyid", "key_id"),
				key: firstField(entry, "k", "key"),
			})
		case entry.Type == gjson.String:
			if kid, key, ok := strings.Cut(entry.Str, ":"); ok {
				pairs = append(pairs, keyPair{kid: kid, key: key})
			}
		}
		return true
	})
	return pairs, len(pairs) > 0
}

func firstField(entry gjson.Result, names ...string) string {
	for _, name := range names {
		if field := entry.Get(name); field.Exists() {
			return field.String()
		}
	}
	return ""
}

// splitSegments splits plain text on newlines, semicolons, pipes and
// commas. segments with a colon are kid:key pairs, the first other
// segment that is valid key material is the bare candidate.
func splitSegments(text string) ([]keyPair, string) {
	var pairs []keyPair
	var bare string
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(segmentSeparators, r)
	})
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if kid, key, ok := strings.Cut(segment, ":"); ok {
			pairs = append(pairs, keyPair{kid: kid, key: key})
			continue
		}
		if bare == "" {
			if key, ok := EnsureHexKey(segment); ok {
				bare = key
			}
		}
	}
	return pairs, bare
}

// matchPair applies the kid rule. without a target exactly one valid pair
// must exist.
func matchPair(pairs []keyPair, target string) (*models.DecryptionKey, bool) {
	var valid []*models.DecryptionKey
	for _, pair := range pairs {
		kid, ok := NormalizeKeyID(pair.kid)
		if !ok {
			continue
		}
		key, ok := EnsureHexKey(pair.key)
		if !ok {
			continue
		}
		if target != "" && strings.EqualFold(kid, target) {
			return &models.DecryptionKey{Key: key, KeyID: kid}, true
		}
		valid = append(valid, &models.DecryptionKey{Key: key, KeyID: kid})
	}
	if target == "" && len(valid) == 1 {
		return valid[0], true
	}
	return nil, false
}
