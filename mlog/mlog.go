/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 11 09:12:31 2018 mstenber
 * Last modified: Thu Aug 16 10:02:47 2018 mstenber
 * Edit time:     41 min
 *
 */

// mlog is maybe-log. It is a small wrapper around the standard 'log'
// which prints only the lines whose originating file matches a
// regular expression given via the REDOXFS_MLOG environment variable
// or the -mlog flag. When nothing matches, calls are almost free; the
// per-file verdict is cached after the first call.
package mlog

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"sync"
)

var logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)

var mutex sync.Mutex

// Everything below must be accessed only with mutex held
var flagPattern *string
var pattern string
var patternRegexp *regexp.Regexp
var file2Enabled map[string]bool

func init() {
	flagPattern = flag.String("mlog", "", "Enable logging for files matching the regular expression")
	initializeWithPattern(os.Getenv("REDOXFS_MLOG"))
}

func initializeWithPattern(p string) {
	pattern = p
	patternRegexp = nil
	file2Enabled = make(map[string]bool)
	if p != "" {
		patternRegexp = regexp.MustCompile(p)
	}
}

// IsEnabled can be used to check if mlog is in use at all before
// doing something expensive just to produce log arguments.
func IsEnabled() bool {
	mutex.Lock()
	defer mutex.Unlock()
	maybeUseFlag()
	return patternRegexp != nil
}

// SetPattern sets the pattern by hand, overriding the environment
// variable and flag provided values. The returned undo function can
// be used to restore the old state.
func SetPattern(p string) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	oldPattern := pattern
	initializeWithPattern(p)
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		initializeWithPattern(oldPattern)
	}
}

// SetLogger overrides the logger used for output. The returned undo
// function restores the old one.
func SetLogger(l *log.Logger) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	oldLogger := logger
	logger = l
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		logger = oldLogger
	}
}

func maybeUseFlag() {
	if pattern == "" && flag.Parsed() && *flagPattern != "" {
		initializeWithPattern(*flagPattern)
	}
}

func enabledForFile(file string) bool {
	maybeUseFlag()
	if patternRegexp == nil {
		return false
	}
	enabled, ok := file2Enabled[file]
	if !ok {
		enabled = patternRegexp.MatchString(file)
		file2Enabled[file] = enabled
	}
	return enabled
}

// Printf2 prints the given line, if the (caller-supplied) file it
// comes from matches the active pattern.
func Printf2(file string, format string, args ...interface{}) {
	mutex.Lock()
	defer mutex.Unlock()
	if !enabledForFile(file) {
		return
	}
	logger.Output(2, fmt.Sprintf("%s: %s", file, fmt.Sprintf(format, args...)))
}
