package donations

import "errors"

var (
	ErrUpstream         = errors.New("payment provider request failed")
	ErrSignatureInvalid = errors.New("webhook signature verification failed")
	ErrRead             = errors.New("cannot read donors")
	ErrWrite            = errors.New("cannot save donor")
	ErrUnhandledEvent   = errors.New("unhandled event type")
	ErrMalformedEvent   = errors.New("malformed event payload")
)

// UpstreamError carries the payment provider's own message, which is shown to
// the caller unchanged.
type UpstreamError struct {
	Message string
	Err     error
}

func (e UpstreamError) Error() string {
	return e.Message
}

func (e UpstreamError) Unwrap() error {
	return e.Err
}

func (e UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
