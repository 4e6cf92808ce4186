// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import "errors"

// User-facing failure messages.
const (
	MessageLoginFailed        = "Invalid username or password"
	MessageRegistrationFailed = "Registration failed"
	MessageBusy               = "Please wait for the current request to finish"
)

// UserMessage collapses a session error into the text shown to the user.
// Both registration stages read the same; callers needing the stage use
// [RegisterError] directly.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrBusy) {
		return MessageBusy
	}
	var registerErr *RegisterError
	if errors.As(err, &registerErr) {
		return MessageRegistrationFailed
	}
	return MessageLoginFailed
}
