/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jun 13 09:21:30 2018 mstenber
 * Last modified: Mon Aug 20 09:47:02 2018 mstenber
 * Edit time:     73 min
 *
 */

package disk

import (
	"os"

	"github.com/fingon/go-redoxfs/mlog"
)

// FileDisk is a fixed-size block device backed by a plain file (or a
// real device node, which looks the same to us).
type FileDisk struct {
	file *os.File
}

var _ Disk = &FileDisk{}

// OpenFileDisk opens an existing file as a disk.
func OpenFileDisk(path string) (*FileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		mlog.Printf2("disk/file", "OpenFileDisk %s: %v", path, err)
		return nil, ErrIO
	}
	return &FileDisk{file: f}, nil
}

// CreateFileDisk creates (or truncates) a file of the given size and
// opens it as a disk.
func CreateFileDisk(path string, size uint64) (*FileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		mlog.Printf2("disk/file", "CreateFileDisk %s: %v", path, err)
		return nil, ErrIO
	}
	if err = f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, ErrIO
	}
	return &FileDisk{file: f}, nil
}

func (self *FileDisk) ReadAt(block uint64, buf []byte) (int, error) {
	n, err := self.file.ReadAt(buf, int64(block*BlockSize))
	if err != nil {
		mlog.Printf2("disk/file", "fd.ReadAt %d: %v", block, err)
		return n, ErrIO
	}
	return n, nil
}

func (self *FileDisk) WriteAt(block uint64, buf []byte) (int, error) {
	n, err := self.file.WriteAt(buf, int64(block*BlockSize))
	if err != nil {
		mlog.Printf2("disk/file", "fd.WriteAt %d: %v", block, err)
		return n, ErrIO
	}
	return n, nil
}

func (self *FileDisk) Size() (uint64, error) {
	fi, err := self.file.Stat()
	if err != nil {
		return 0, ErrIO
	}
	return uint64(fi.Size()), nil
}

func (self *FileDisk) Sync() error {
	if err := self.file.Sync(); err != nil {
		return ErrIO
	}
	return nil
}

func (self *FileDisk) Close() error {
	if err := self.file.Close(); err != nil {
		return ErrIO
	}
	return nil
}
