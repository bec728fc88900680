/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger is a thin structured-logging facade over logrus: the
// engine the teacher's own logger package wraps. It narrows that teacher
// surface down to what the pool, registry and client need — leveled
// messages plus contextual fields (node id, pool address, correlation id) —
// rather than reproducing its full syslog/hookfile/gin fan-out, which this
// module has no surface to exercise (see DESIGN.md).
package logger

import (
	"github.com/sirupsen/logrus"
)

// Level mirrors logrus' level ordering so callers don't need to import
// logrus directly.
type Level uint32

const (
	DebugLevel Level = Level(logrus.DebugLevel)
	InfoLevel  Level = Level(logrus.InfoLevel)
	WarnLevel  Level = Level(logrus.WarnLevel)
	ErrorLevel Level = Level(logrus.ErrorLevel)
)

// Fields are contextual key/value pairs attached to a single log entry.
type Fields map[string]any

// Logger is the logging surface this module's components depend on.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level

	Debug(message string, fields Fields)
	Info(message string, fields Fields)
	Warning(message string, fields Fields)
	Error(message string, fields Fields, err error)

	// WithFields returns a Logger that merges fields into every entry it
	// logs, without mutating the receiver — used to stamp a node id or pool
	// address onto every message a component emits.
	WithFields(fields Fields) Logger
}

type lgr struct {
	entry *logrus.Entry
}

// New returns a Logger backed by a fresh logrus.Logger at InfoLevel.
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return &lgr{entry: logrus.NewEntry(l)}
}

// NewFrom wraps an already-configured *logrus.Logger (e.g. one an embedding
// application built with its own formatter/output).
func NewFrom(base *logrus.Logger) Logger {
	return &lgr{entry: logrus.NewEntry(base)}
}

func (l *lgr) SetLevel(lvl Level) {
	l.entry.Logger.SetLevel(logrus.Level(lvl))
}

func (l *lgr) GetLevel() Level {
	return Level(l.entry.Logger.GetLevel())
}

func (l *lgr) Debug(message string, fields Fields) {
	l.withFields(fields).Debug(message)
}

func (l *lgr) Info(message string, fields Fields) {
	l.withFields(fields).Info(message)
}

func (l *lgr) Warning(message string, fields Fields) {
	l.withFields(fields).Warn(message)
}

func (l *lgr) Error(message string, fields Fields, err error) {
	e := l.withFields(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(message)
}

func (l *lgr) WithFields(fields Fields) Logger {
	return &lgr{entry: l.withFields(fields)}
}

func (l *lgr) withFields(fields Fields) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(logrus.Fields(fields))
}
