package tokens

import "github.com/gagliardetto/solana-go"

var (
	// NativeSOLMint is the pseudo-mint token lists use for un-wrapped SOL
	NativeSOLMint = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	// WrappedSOLMint is the SPL wrapped-SOL mint
	WrappedSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// NormalizeMint maps the native-SOL pseudo-mint onto the wrapped-SOL mint.
// Every component that compares mint addresses goes through this function,
// so native and wrapped SOL are interchangeable for pool matching.
func NormalizeMint(mint solana.PublicKey) solana.PublicKey {
	if mint.Equals(NativeSOLMint) {
		return WrappedSOLMint
	}
	return mint
}

// SameMint reports whether two mints refer to the same asset after aliasing
func SameMint(a, b solana.PublicKey) bool {
	return NormalizeMint(a).Equals(NormalizeMint(b))
}

// IsNativeSOL reports whether the mint is the un-wrapped native pseudo-mint
func IsNativeSOL(mint solana.PublicKey) bool {
	return mint.Equals(NativeSOLMint)
}

// IsSOL reports whether the mint is native or wrapped SOL
func IsSOL(mint solana.PublicKey) bool {
	return NormalizeMint(mint).Equals(WrappedSOLMint)
}
