// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package framing

import "errors"

// ErrInvalidFrameSize reports a framing callback returning a negative size
// or an internally inconsistent dispatcher mode.
var ErrInvalidFrameSize = errors.New("framing: invalid frame size")
