// Package siwe implements the backend half of the Sign-In with Ethereum
// flow (EIP-4361): challenge issuance with single-use nonces, canonical
// message construction and parsing, and verification with an optional
// third-party JWT mint. Signature recovery itself is delegated to an
// injected verifier.
package siwe

import (
	"fmt"
	"strings"
)

// MessageParams are the fields of a canonical SIWE message. Expiration and
// Resources lines are not emitted.
type MessageParams struct {
	Domain    string
	Address   string
	URI       string
	ChainID   int64
	Nonce     string
	IssuedAt  string
	Statement string
}

// BuildMessage constructs the canonical EIP-4361 message.
func BuildMessage(p MessageParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n%s\n\n", p.Domain, p.Address)
	if p.Statement != "" {
		fmt.Fprintf(&b, "%s\n", p.Statement)
	}
	fmt.Fprintf(&b, "URI: %s\n", p.URI)
	b.WriteString("Version: 1\n")
	fmt.Fprintf(&b, "Chain ID: %d\n", p.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", p.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", p.IssuedAt)

	return b.String()
}

// ParseMessage extracts the address and nonce from a message with the
// canonical layout emitted by BuildMessage: the address is the second line,
// the nonce is on the "Nonce:" line.
func ParseMessage(message string) (address, nonce string, err error) {
	lines := strings.Split(message, "\n")
	if len(lines) < 6 {
		return "", "", ErrMalformedMessage
	}

	address = strings.TrimSpace(lines[1])
	if address == "" {
		return "", "", ErrMalformedMessage
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "Nonce:") {
			nonce = strings.TrimSpace(strings.TrimPrefix(line, "Nonce:"))
			break
		}
	}
	if nonce == "" {
		return "", "", ErrNonceMissing
	}

	return address, nonce, nil
}
