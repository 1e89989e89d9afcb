package memo

import "errors"

var (
	// ErrMalformedGram covers any gram whose header cannot be parsed or
	// whose fixed-width fields fail validation. Per spec.md §7 this is
	// never propagated to the caller from the RX path; it is logged
	// and the gram dropped.
	ErrMalformedGram = errors.New("memo: malformed gram")

	// ErrOversizeMemo is returned by Memoit when a memo exceeds
	// MaxMemoSize.
	ErrOversizeMemo = errors.New("memo: memo exceeds MaxMemoSize")

	// ErrGramCountOverflow is returned when fragmenting a memo would
	// need more than MaxGramCount grams.
	ErrGramCountOverflow = errors.New("memo: fragment count exceeds MaxGramCount")

	// ErrGramTooLarge is returned when the configured gram size leaves
	// no room for a single byte of payload once the header is
	// accounted for.
	ErrGramTooLarge = errors.New("memo: gram size too small for header")
)
