package util

type Error struct {
	Message string
}

func (err *Error) Error() string {
	return err.Message
}

var (
	ErrFetch          = &Error{Message: "manifest is unreachable"}
	ErrParse          = &Error{Message: "malformed manifest or payload"}
	ErrKeyExchange    = &Error{Message: "key exchange failed"}
	ErrKeyMismatch    = &Error{Message: "no key matches the target key id"}
	ErrNoFormat       = &Error{Message: "no playable format found"}
	ErrNoProtection   = &Error{Message: "no usable protection info in manifest"}
	ErrNoToken        = &Error{Message: "no drm authorization token available"}
	ErrRemux          = &Error{Message: "remux service request failed"}
	ErrNotConfigured  = &Error{Message: "collaborator is not configured"}
	ErrInvalidKeyData = &Error{Message: "invalid key material"}
)
