package model

import "strings"

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
	NetworkLocal   Network = "localnet"
)

func (n Network) String() string {
	return string(n)
}

// Valid reports whether n is one of the known Sui networks.
func (n Network) Valid() bool {
	switch n {
	case NetworkMainnet, NetworkTestnet, NetworkDevnet, NetworkLocal:
		return true
	}
	return false
}

// NativeCoinType is the Sui coin type of the native SUI coin in its short form.
const NativeCoinType = "0x2::sui::SUI"

// NativeDecimals is the number of MIST digits in one SUI.
const NativeDecimals = 9

// NormalizeAddress returns the canonical 0x-prefixed, 64 hex digit, lower-case
// form of a Sui address. Short forms such as "0x2" are left-padded with zeros.
// Inputs that are not hex are returned lower-cased and trimmed.
func NormalizeAddress(addr string) string {
	a := strings.ToLower(strings.TrimSpace(addr))
	a = strings.TrimPrefix(a, "0x")
	if a == "" || len(a) > 64 || !isHex(a) {
		return strings.ToLower(strings.TrimSpace(addr))
	}
	return "0x" + strings.Repeat("0", 64-len(a)) + a
}

// NormalizeCoinType canonicalizes the package address of a Move type tag
// ("0x2::sui::SUI" and "0x000…002::sui::SUI" compare equal afterwards).
func NormalizeCoinType(coinType string) string {
	parts := strings.SplitN(strings.TrimSpace(coinType), "::", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(coinType)
	}
	return NormalizeAddress(parts[0]) + "::" + parts[1]
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
