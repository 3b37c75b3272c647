package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainArtifact = "omtmzn/artifact/v1"
	DomainScript   = "omtmzn/script/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ArtifactHash identifies the content of an emitted MiniZinc file.
// Identical translations hash identically.
func ArtifactHash(content []byte) string {
	return hashWithDomain(DomainArtifact, content)
}

// ScriptHash identifies an input script. The text is NFC-normalized and line
// endings are unified first, so visually identical scripts hash identically.
func ScriptHash(text string) string {
	normalized := norm.NFC.String(strings.ReplaceAll(text, "\r\n", "\n"))
	return hashWithDomain(DomainScript, []byte(normalized))
}
