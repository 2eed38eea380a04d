package svc

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"
)

// CanonicalRules normalizes grammar text into the list of rules it holds.
// Every line is converted to Unicode NFC, runs of whitespace are collapsed to
// a single space, and lines left blank are dropped. Two texts that differ only
// in those respects give the same rules.
func CanonicalRules(text string) []string {
	text = norm.NFC.String(text)

	var rules []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		rules = append(rules, strings.Join(fields, " "))
	}
	return rules
}

// GrammarKey gives the key that identifies canonical rules built under a
// conflict policy. It is the hex BLAKE2b-256 digest of both.
func GrammarKey(rules []string, policy string) string {
	h, _ := blake2b.New256(nil)
	for _, r := range rules {
		h.Write([]byte(r))
		h.Write([]byte{'\n'})
	}
	h.Write([]byte{0})
	h.Write([]byte(policy))
	return hex.EncodeToString(h.Sum(nil))
}
