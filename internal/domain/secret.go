package domain

import "log/slog"

const redacted = "[REDACTED]"

// PrivateKey holds a wallet signing credential. Every formatting path redacts
// it; only Reveal returns the raw value.
type PrivateKey struct {
	value string
}

func NewPrivateKey(v string) PrivateKey {
	return PrivateKey{value: v}
}

func (k PrivateKey) Reveal() string { return k.value }

func (k PrivateKey) IsZero() bool { return k.value == "" }

func (k PrivateKey) String() string { return redacted }

func (k PrivateKey) GoString() string { return redacted }

func (k PrivateKey) LogValue() slog.Value { return slog.StringValue(redacted) }

func (k PrivateKey) MarshalText() ([]byte, error) { return []byte(redacted), nil }

func (k PrivateKey) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }
