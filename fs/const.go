/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 18 08:30:12 2018 mstenber
 * Last modified: Tue Aug 21 09:14:55 2018 mstenber
 * Edit time:     22 min
 *
 */

// fs implements the on-disk format and the filesystem on top of a
// disk.Disk: a flat block/extent layout with a superblock Header, one
// Node block per file or directory, and ExNode overflow blocks when a
// node's inline extent list runs out.
//
// One open FileSystem owns its Disk exclusively and is single-owner
// like the disks themselves; a concurrent caller must serialize
// operations (one lock around each call is enough).
package fs

import "github.com/fingon/go-redoxfs/disk"

const BlockSize = disk.BlockSize

const (
	// Signature is the first 8 bytes of the header block.
	Signature = "RedoxFS\x00"

	// Version is the only on-disk format version we speak.
	Version = 4
)

const (
	// ExtentSize is the encoded size of one Extent.
	ExtentSize = 16

	// NameLen is the size of the name field in a Node.
	NameLen = 214

	nodeFixedSize = 272

	// NodeExtents is the number of inline extents in a Node;
	// the extent array fills the block exactly.
	NodeExtents = (BlockSize - nodeFixedSize) / ExtentSize

	// ExNodeExtents is the number of extents in an ExNode; prev and
	// next links take 16 bytes and extents fill the rest exactly.
	ExNodeExtents = (BlockSize - 16) / ExtentSize
)

// Node mode bits; type in the high nibble, permissions below.
const (
	ModeType uint16 = 0xF000
	ModeDir  uint16 = 0x4000
	ModeFile uint16 = 0x8000
	ModePerm uint16 = 0x0FFF
)
