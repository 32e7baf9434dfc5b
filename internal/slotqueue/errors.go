// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotqueue

import "code.hybscloud.com/iox"

// ErrWouldBlock is returned by Enqueue when the queue is full and by
// Dequeue when the queue is empty. It is the same sentinel iox uses for
// its own non-blocking I/O operations, so callers that already switch on
// it for iox calls can reuse that logic here.
var ErrWouldBlock = iox.ErrWouldBlock
