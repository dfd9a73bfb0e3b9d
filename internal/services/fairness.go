package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strconv"
)

// Fairness holds the process server seed and its published commitment.
type Fairness struct {
	serverSeed string
	seedHash   string
}

func NewFairness(serverSeed string) *Fairness {
	return &Fairness{
		serverSeed: serverSeed,
		seedHash:   SeedHash(serverSeed),
	}
}

func (f *Fairness) SeedHash() string {
	return f.seedHash
}

func (f *Fairness) Roll(clientSeed string, nonce uint64) float64 {
	return Roll(f.serverSeed, clientSeed, nonce)
}

// SeedHash is the lowercase hex SHA-256 commitment of a server seed.
func SeedHash(serverSeed string) string {
	hash := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(hash[:])
}

// Roll derives the verifiable value in [0,1) for a bet:
// HMAC-SHA256(serverSeed, "clientSeed:nonce"), first 8 bytes big-endian / 2^64.
// It is published for audit only and never decides an outcome.
func Roll(serverSeed, clientSeed string, nonce uint64) float64 {
	message := clientSeed + ":" + strconv.FormatUint(nonce, 10)
	h := hmac.New(sha256.New, []byte(serverSeed))
	h.Write([]byte(message))
	return unitInterval(h.Sum(nil))
}

func unitInterval(b []byte) float64 {
	u := binary.BigEndian.Uint64(b[:8])
	// float64(u) can round up to 2^64 for u close to the max.
	return math.Min(float64(u)/math.Pow(2, 64), math.Nextafter(1, 0))
}
