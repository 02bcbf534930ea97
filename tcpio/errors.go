// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcpio

import "errors"

var (
	// ErrMessageHandlerTerminated reports that the message handler callback
	// returned false, which closes the connection (spec §4.4/§4.6).
	ErrMessageHandlerTerminated = errors.New("tcpio: message handler terminated")

	// ErrUnexpectedRead reports that a no-reader handler's posted read
	// completed — which spec §4.4 item 5 treats as an error condition.
	ErrUnexpectedRead = errors.New("tcpio: unexpected read completion on no-reader handler")
)
