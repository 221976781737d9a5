package ticketing

import (
	"fmt"
	"strings"
)

// TokenGenerator formats sequential identifiers into display tokens.
type TokenGenerator struct {
	prefix string
}

// NewTokenGenerator validates the prefix.
func NewTokenGenerator(prefix string) (TokenGenerator, error) {
	if strings.TrimSpace(prefix) == "" {
		return TokenGenerator{}, fmt.Errorf("%w: empty value", ErrInvalidTokenPrefix)
	}
	if strings.ContainsAny(prefix, " \t\r\n") {
		return TokenGenerator{}, fmt.Errorf("%w: contains whitespace", ErrInvalidTokenPrefix)
	}
	if strings.ContainsAny(prefix, `/\`) {
		return TokenGenerator{}, fmt.Errorf("%w: contains a path separator", ErrInvalidTokenPrefix)
	}
	for index := 0; index < len(prefix); index++ {
		if prefix[index] < 0x20 || prefix[index] > 0x7e {
			return TokenGenerator{}, fmt.Errorf("%w: only printable ASCII can be encoded in a barcode", ErrInvalidTokenPrefix)
		}
	}
	return TokenGenerator{prefix: prefix}, nil
}

// Prefix returns the configured prefix.
func (generator TokenGenerator) Prefix() string {
	return generator.prefix
}

// FromID returns prefix + id zero-padded to six digits.
func (generator TokenGenerator) FromID(ticketID TicketID) Token {
	return Token{value: fmt.Sprintf("%s%0*d", generator.prefix, tokenDigits, ticketID.Int64())}
}
