package services

import (
	"errors"
	"fmt"

	"speecheval/utils"
)

// ErrorKind classifies why an assessment failed.
type ErrorKind string

const (
	KindConfig    ErrorKind = "config"
	KindRequest   ErrorKind = "request"
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindDecode    ErrorKind = "decode"
	KindLogical   ErrorKind = "logical"
)

// VendorError is the single error shape returned by every adapter.
type VendorError struct {
	Kind       ErrorKind
	Vendor     string
	StatusCode int
	Message    string
	Err        error
}

func (e *VendorError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Vendor, e.Message, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Vendor, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Vendor, e.Message)
	}
}

func (e *VendorError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a VendorError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ve *VendorError
	return errors.As(err, &ve) && ve.Kind == kind
}

func configError(vendor, message string) error {
	return &VendorError{Kind: KindConfig, Vendor: vendor, Message: message}
}

func requestError(vendor string, err error) error {
	return &VendorError{Kind: KindRequest, Vendor: vendor, Message: "failed to build request", Err: err}
}

func transportError(vendor string, err error) error {
	return &VendorError{Kind: KindTransport, Vendor: vendor, Message: "failed to reach service", Err: err}
}

func statusError(vendor string, status int, body []byte) error {
	msg := "service returned an error status"
	if snippet := utils.Truncate(string(body), 200); snippet != "" {
		msg += ": " + snippet
	}
	return &VendorError{Kind: KindStatus, Vendor: vendor, StatusCode: status, Message: msg}
}

func decodeError(vendor string, err error) error {
	return &VendorError{Kind: KindDecode, Vendor: vendor, Message: "failed to parse response", Err: err}
}

func logicalError(vendor, message string) error {
	return &VendorError{Kind: KindLogical, Vendor: vendor, Message: message}
}
