package wire

// Never is the error type for games whose account data or extras cannot be
// refused with a custom error. No type implements it, so the only value of
// Never is nil: an AccountError[Never] can never carry an Other payload and a
// GameExtras error of type Never can never be constructed from the wire.
type Never interface {
	never()
}
