/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jun 13 08:50:12 2018 mstenber
 * Last modified: Mon Aug 20 09:31:44 2018 mstenber
 * Edit time:     58 min
 *
 */

// disk package abstracts a block device: fixed-size blocks that are
// read and written by block number. All on-disk structures of the
// filesystem are expressed in these blocks.
//
// Whatever the operating system reports as the reason for a failing
// read or write is collapsed here into ErrIO; the format layer above
// cares only that the device failed, not how.
package disk

import "errors"

// BlockSize is the size of one block in bytes. The on-disk format is
// defined in terms of it and it cannot be changed without changing
// the format.
const BlockSize = 4096

var ErrIO = errors.New("disk i/o error")

// Disk is a block device.
//
// ReadAt and WriteAt transfer len(buf) bytes at the given block
// number (buf is at most BlockSize, and block-aligned access is the
// only access there is). Size is the device size in bytes; devices
// that grow on demand report an effectively unbounded size. Sync
// makes sure everything written so far has actually hit the backing
// store.
//
// A Disk has a single owner; concurrent calls are the owner's
// problem.
type Disk interface {
	ReadAt(block uint64, buf []byte) (int, error)
	WriteAt(block uint64, buf []byte) (int, error)
	Size() (uint64, error)
	Sync() error
	Close() error
}
