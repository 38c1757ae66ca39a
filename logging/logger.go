//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	NONE   = Level(iota) // Disable all logging
	FATAL                // System is in severe error state and has to terminate
	SEVERE               // System is in severe error state and cannot recover reliably
	ERROR                // System is in error state but can recover and continue reliably
	WARN                 // System approaching error state, or is in a correct but undesirable state
	INFO                 // System-level events and status, in correct states
	DEBUG                // Debug
	TRACE                // Trace detailed system execution, e.g. function entry / exit
)

func (level Level) String() string {
	return _LEVEL_NAMES[level]
}

var _LEVEL_NAMES = []string{
	DEBUG:  "DEBUG",
	TRACE:  "TRACE",
	INFO:   "INFO",
	WARN:   "WARN",
	ERROR:  "ERROR",
	SEVERE: "SEVERE",
	FATAL:  "FATAL",
	NONE:   "NONE",
}

var _LEVEL_MAP = map[string]Level{
	"debug":  DEBUG,
	"trace":  TRACE,
	"info":   INFO,
	"warn":   WARN,
	"error":  ERROR,
	"severe": SEVERE,
	"fatal":  FATAL,
	"none":   NONE,
}

func ParseLevel(name string) (Level, bool) {
	level, ok := _LEVEL_MAP[strings.ToLower(name)]
	return level, ok
}

/*
Logger provides a common interface for logging libraries.
*/
type Logger interface {
	/*
	   Logs a message at a level.
	*/
	Logf(level Level, fmt string, args ...interface{})

	/*
	   Sets the minimum log level.
	*/
	SetLevel(Level)

	/*
	   Returns the current log level.
	*/
	Level() Level
}

type golog struct {
	sync.Mutex
	level  Level
	logger *log.Logger
}

func NewLogger(level Level) Logger {
	return &golog{
		level:  level,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (this *golog) Logf(level Level, format string, args ...interface{}) {
	if level > this.level || this.level == NONE {
		return
	}
	this.Lock()
	this.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
	this.Unlock()
}

func (this *golog) SetLevel(level Level) {
	this.Lock()
	this.level = level
	this.Unlock()
}

func (this *golog) Level() Level {
	this.Lock()
	rv := this.level
	this.Unlock()
	return rv
}

var logger Logger = NewLogger(INFO)

func SetLogger(l Logger) {
	logger = l
}

func SetLevel(level Level) {
	logger.SetLevel(level)
}

func LogLevel() Level {
	return logger.Level()
}

func Tracef(fmt string, args ...interface{}) {
	logger.Logf(TRACE, fmt, args...)
}

func Debugf(fmt string, args ...interface{}) {
	logger.Logf(DEBUG, fmt, args...)
}

func Infof(fmt string, args ...interface{}) {
	logger.Logf(INFO, fmt, args...)
}

func Warnf(fmt string, args ...interface{}) {
	logger.Logf(WARN, fmt, args...)
}

func Errorf(fmt string, args ...interface{}) {
	logger.Logf(ERROR, fmt, args...)
}

func Severef(fmt string, args ...interface{}) {
	logger.Logf(SEVERE, fmt, args...)
}

func Fatalf(fmt string, args ...interface{}) {
	logger.Logf(FATAL, fmt, args...)
}
