package domain

// FieldState identifies which representation of a stored field is present.
type FieldState int

const (
	// FieldAbsent means neither a plaintext mirror nor an envelope is stored.
	// An absent field was never populated; it is not an error.
	FieldAbsent FieldState = iota
	// FieldPlaintext means only a legacy plaintext mirror column is populated.
	FieldPlaintext
	// FieldEncrypted means an envelope is stored for the field.
	FieldEncrypted
)

// FieldValue is the read-time view of one PII field on a stored entity.
//
// Rows written before encryption was introduced carry plaintext mirror columns
// alongside empty encrypted columns; rows written after carry only envelopes.
// The state is decided once at read time based on which representation is
// present, instead of null-checking at every call site.
type FieldValue struct {
	state     FieldState
	plaintext string
	stored    []byte
}

// AbsentField returns the value for a field that was never populated.
func AbsentField() FieldValue {
	return FieldValue{state: FieldAbsent}
}

// PlaintextField returns the value for a legacy plaintext mirror column.
func PlaintextField(value string) FieldValue {
	if value == "" {
		return AbsentField()
	}
	return FieldValue{state: FieldPlaintext, plaintext: value}
}

// EncryptedField returns the value for a stored envelope.
func EncryptedField(stored []byte) FieldValue {
	if len(stored) == 0 {
		return AbsentField()
	}
	return FieldValue{state: FieldEncrypted, stored: stored}
}

// ReadStoredField decides the representation for one field given both the
// encrypted column and the legacy plaintext mirror column. The envelope wins
// when both are present: the mirror is only a fallback for pre-migration rows.
func ReadStoredField(encrypted []byte, plaintextMirror string) FieldValue {
	if len(encrypted) > 0 {
		return EncryptedField(encrypted)
	}
	return PlaintextField(plaintextMirror)
}

// State returns which representation this field carries.
func (f FieldValue) State() FieldState {
	return f.state
}

// Plaintext returns the legacy plaintext value. Only valid for FieldPlaintext.
func (f FieldValue) Plaintext() string {
	return f.plaintext
}

// Stored returns the serialized envelope bytes. Only valid for FieldEncrypted.
func (f FieldValue) Stored() []byte {
	return f.stored
}
