// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin

package entity

import "syscall"

// tuneSocket is a no-op on platforms golang.org/x/sys/unix doesn't cover
// with the SO_REUSEADDR/SO_REUSEPORT/TCP_NODELAY constants used here.
func tuneSocket(_ syscall.RawConn, _ Options, _ bool) error {
	return nil
}
