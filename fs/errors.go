/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 18 08:52:40 2018 mstenber
 * Last modified: Tue Aug 21 09:20:13 2018 mstenber
 * Edit time:     14 min
 *
 */

package fs

import "errors"

// The error surface of the filesystem. I/O failures of the underlying
// device come through as disk.ErrIO; everything is reported to the
// caller verbatim and nothing is retried here.
var (
	ErrCorruptHeader   = errors.New("corrupt header")
	ErrVersionMismatch = errors.New("filesystem version mismatch")
	ErrNoSpace         = errors.New("no space left on device")
	ErrBadNode         = errors.New("not a valid node")
	ErrBadChain        = errors.New("malformed extent chain")
	ErrNotDir          = errors.New("not a directory")
	ErrIsDir           = errors.New("is a directory")
	ErrNotFound        = errors.New("no such file or directory")
	ErrExists          = errors.New("file exists")
	ErrNotEmpty        = errors.New("directory not empty")
	ErrNameTooLong     = errors.New("name too long")
	ErrClosed          = errors.New("filesystem closed")
)
