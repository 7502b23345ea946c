/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 11 09:44:02 2018 mstenber
 * Last modified: Mon Jun 11 09:58:13 2018 mstenber
 * Edit time:     12 min
 *
 */

package mlog

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stvp/assert"
)

func TestMlog(t *testing.T) {
	var buf bytes.Buffer
	undoLogger := SetLogger(log.New(&buf, "", 0))
	defer undoLogger()

	undo := SetPattern("disk/file")
	assert.True(t, IsEnabled())
	Printf2("disk/file", "hello %d", 42)
	Printf2("fs/node", "not for us")
	undo()

	s := buf.String()
	assert.True(t, strings.Contains(s, "hello 42"))
	assert.False(t, strings.Contains(s, "not for us"))

	// Disabled pattern should print nothing at all.
	buf.Reset()
	undo = SetPattern("")
	Printf2("disk/file", "silent")
	undo()
	assert.Equal(t, buf.String(), "")
}
