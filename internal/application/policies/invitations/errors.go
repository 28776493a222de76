package policies

import (
	"errors"
	"strings"
)

// Pre-flight rejections, in the order Validate checks them.
var (
	ErrEmptyRecipients     = errors.New("メールアドレスを入力してください")
	ErrInvalidEmailFormat  = errors.New("無効なメールアドレスが含まれています")
	ErrDuplicateRecipients = errors.New("重複したメールアドレスがあります")
	ErrMissingRole         = errors.New("権限を選択してください")
)

// ValidationError is a pre-flight rejection. It wraps one of the sentinels
// above and carries the addresses that caused it, if any.
type ValidationError struct {
	Err       error
	Addresses []string
}

func (e *ValidationError) Error() string {
	if len(e.Addresses) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + strings.Join(e.Addresses, ", ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
