/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jun 22 09:10:36 2018 mstenber
 * Last modified: Thu Aug 23 11:34:02 2018 mstenber
 * Edit time:     126 min
 *
 */

package fs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fingon/go-redoxfs/mlog"
)

// Directory operations. A directory's extents enumerate its children:
// every block they span is one child Node block. The child's name
// lives in the child node itself.

// forEachChild loads the children of dir in extent order until fn
// returns false.
func (self *FileSystem) forEachChild(dir *Node, fn func(n *Node) (bool, error)) error {
	if !dir.IsDir() {
		return ErrNotDir
	}
	el, err := self.loadChain(dir)
	if err != nil {
		return err
	}
	for i := 0; i < el.slotCount(); i++ {
		e := *el.slot(i)
		if e.Empty() {
			continue
		}
		it := e.Blocks()
		for {
			b, _, ok := it.Next()
			if !ok {
				break
			}
			n, err := self.readNode(b)
			if err != nil {
				return err
			}
			cont, err := fn(n)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
	}
	return nil
}

// Lookup resolves one path component in dir.
func (self *FileSystem) Lookup(dir *Node, name string) (*Node, error) {
	if self.closed {
		return nil, ErrClosed
	}
	var found *Node
	err := self.forEachChild(dir, func(n *Node) (bool, error) {
		if n.Name() == name {
			found = n
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return found, nil
}

// ListDir returns the children of dir in extent order.
func (self *FileSystem) ListDir(dir *Node) ([]*Node, error) {
	if self.closed {
		return nil, ErrClosed
	}
	var children []*Node
	err := self.forEachChild(dir, func(n *Node) (bool, error) {
		children = append(children, n)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// CreateNode creates a file or directory node under dir. The node
// block is written before the directory references it.
func (self *FileSystem) CreateNode(dir *Node, name string, mode uint16, ts time.Time) (*Node, error) {
	if self.closed {
		return nil, ErrClosed
	}
	if !dir.IsDir() {
		return nil, ErrNotDir
	}
	if name == "" {
		return nil, fmt.Errorf("empty name")
	}
	if t := mode & ModeType; t != ModeDir && t != ModeFile {
		return nil, fmt.Errorf("mode %#x: %w", mode, ErrBadNode)
	}
	// Only a clean not-found verdict means the name is free; a
	// failure while scanning the directory aborts the create.
	switch _, err := self.Lookup(dir, name); {
	case err == nil:
		return nil, fmt.Errorf("%q: %w", name, ErrExists)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	n, err := NewNode(name, mode, dir.Block, ts)
	if err != nil {
		return nil, err
	}
	ext, err := self.Allocate(1)
	if err != nil {
		return nil, err
	}
	n.Block = ext.Block
	if err = self.writeNode(n); err != nil {
		return nil, err
	}
	el, err := self.loadChain(dir)
	if err != nil {
		return nil, err
	}
	if err = el.append(Extent{Block: n.Block, Length: BlockSize}); err != nil {
		return nil, err
	}
	dir.Size += BlockSize
	dir.SetMtime(ts)
	if err = el.store(); err != nil {
		return nil, err
	}
	mlog.Printf2("fs/dir", "fs.CreateNode %q mode:%#x -> %d", name, mode, n.Block)
	return n, nil
}

// RemoveNode removes the named child of dir: data extents, ExNode
// chain and the node block all return to the pool. Directories must
// be empty. The directory stops referencing the node before anything
// is freed.
func (self *FileSystem) RemoveNode(dir *Node, name string, ts time.Time) error {
	if self.closed {
		return ErrClosed
	}
	child, err := self.Lookup(dir, name)
	if err != nil {
		return err
	}
	if child.IsDir() && child.Size > 0 {
		return fmt.Errorf("%q: %w", name, ErrNotEmpty)
	}
	if child.IsFile() && child.Size > 0 {
		if err = self.Truncate(child, 0, ts); err != nil {
			return err
		}
	}
	el, err := self.loadChain(dir)
	if err != nil {
		return err
	}
	if err = el.removeBlock(child.Block); err != nil {
		return err
	}
	dir.Size -= BlockSize
	dir.SetMtime(ts)
	if err = el.store(); err != nil {
		return err
	}
	mlog.Printf2("fs/dir", "fs.RemoveNode %q (block %d)", name, child.Block)
	return self.Free(Extent{Block: child.Block, Length: BlockSize})
}

// NodeAtPath walks a /-separated path from the root. Empty components
// are skipped; the empty path is the root itself.
func (self *FileSystem) NodeAtPath(path string) (*Node, error) {
	if self.closed {
		return nil, ErrClosed
	}
	n, err := self.NodeAt(self.header.Root)
	if err != nil {
		return nil, err
	}
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if n, err = self.Lookup(n, part); err != nil {
			return nil, err
		}
	}
	return n, nil
}
