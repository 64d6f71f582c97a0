package sync

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100_000
	keySize          = 32 // AES-256
	nonceSize        = 12

	// keySalt provides domain separation for derived keys.
	// Fixed at build time; it is not a secret.
	keySalt = "wanderlist-salt-2024"

	// emailHashLen is the number of base64 characters kept from the full
	// email digest. The hash is only an equality check at lookup time;
	// a wrong email makes decryption fail regardless.
	emailHashLen = 16
)

// DeriveKey derives a 32-byte AES-256 key from an email and the
// millisecond timestamp captured at encryption time, using PBKDF2-SHA256.
// Identical inputs always yield the identical key; the whole sync feature
// rests on that, because the second device re-derives the key from the
// same (email, timestamp) pair to decrypt.
func DeriveKey(email string, timestamp int64) []byte {
	material := []byte(email + strconv.FormatInt(timestamp, 10))
	return pbkdf2.Key(material, []byte(keySalt), pbkdf2Iterations, keySize, sha256.New)
}

// Encrypt serializes the payload to JSON and encrypts it with AES-256-GCM
// under a key derived from (email, now). Returns the encoded ciphertext
// and the timestamp the caller must persist, since decryption needs it.
func Encrypt(payload *SyncPayload, email string) (string, int64, error) {
	timestamp := time.Now().UnixMilli()
	encoded, err := EncryptAt(payload, email, timestamp)
	return encoded, timestamp, err
}

// EncryptAt is Encrypt with an explicit timestamp.
// Format: base64(nonce + ciphertext + tag), nonce fresh per call.
func EncryptAt(payload *SyncPayload, email string, timestamp int64) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	block, err := aes.NewCipher(DeriveKey(email, timestamp))
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses EncryptAt given the same email and timestamp.
// Any authentication failure (wrong email, tampered or truncated data)
// reports ErrDecryptFailed; a payload that authenticates but does not
// parse reports ErrCorruptPayload.
func Decrypt(encoded, email string, timestamp int64) (*SyncPayload, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding", ErrDecryptFailed)
	}
	if len(data) < nonceSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptFailed)
	}

	block, err := aes.NewCipher(DeriveKey(email, timestamp))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrDecryptFailed)
	}

	var payload SyncPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	return &payload, nil
}

// HashEmail returns a short one-way digest of the normalized email.
// Stored instead of the plaintext email so the sync store never sees it.
func HashEmail(email string) string {
	norm := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(norm))
	return base64.StdEncoding.EncodeToString(sum[:])[:emailHashLen]
}
