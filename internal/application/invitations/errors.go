package invitations

import "errors"

var (
	// ErrRecipientSendFailed is attached to a failed Result; Dispatch never returns it.
	ErrRecipientSendFailed = errors.New("招待の送信に失敗しました")
	ErrIllegalTransition   = errors.New("illegal submission transition")
	ErrNoSender            = errors.New("no invitation sender configured")
)
