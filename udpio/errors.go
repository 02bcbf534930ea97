// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package udpio

import "errors"

var (
	// ErrMessageHandlerTerminated reports that the message handler callback
	// returned false, which closes the socket (spec §4.4/§4.6).
	ErrMessageHandlerTerminated = errors.New("udpio: message handler terminated")

	// ErrUnexpectedRead names a read completion on a no-reader handler. The
	// no-reader start variants post no read, so no function in this package
	// returns it.
	ErrUnexpectedRead = errors.New("udpio: unexpected read completion on no-reader handler")

	// ErrNoDestination names a Send call (no explicit endpoint) on a handler
	// started without a default destination endpoint. Handler.Send reports
	// that case by returning false; no function in this package returns
	// this value.
	ErrNoDestination = errors.New("udpio: no destination endpoint configured")
)
