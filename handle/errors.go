// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handle

import "errors"

var (
	// ErrHandleExpired reports that a Weak handle's referent handler no
	// longer exists.
	ErrHandleExpired = errors.New("netio: handle expired")

	// ErrReleased reports a send attempt on a Strong handle after Release.
	ErrReleased = errors.New("netio: handle released")
)
