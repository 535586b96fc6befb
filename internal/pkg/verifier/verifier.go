package verifier

// Verifier validates that a raw webhook body/header pair was produced by the
// claimed provider. Implementations are stateless aside from loaded secret or
// key material; a missing secret is a construction-time error, never a
// per-request one.
type Verifier interface {
	Verify(raw []byte, header func(string) string) error
}
