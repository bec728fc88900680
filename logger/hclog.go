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

package logger

import (
	"fmt"
	"io"
	"log"

	"github.com/hashicorp/go-hclog"
)

// hclogBridge adapts a Logger to hclog.Logger, so embedding applications
// that wire hclog-based tooling (common across the pack) can capture this
// module's pool/client log lines without a second logging stack.
type hclogBridge struct {
	l    Logger
	name string
}

// AsHCLog returns an hclog.Logger that forwards to l.
func AsHCLog(l Logger, name string) hclog.Logger {
	return &hclogBridge{l: l, name: name}
}

func (h *hclogBridge) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Off, hclog.NoLevel:
		return
	case hclog.Trace, hclog.Debug:
		h.l.Debug(msg, argsToFields(args))
	case hclog.Info:
		h.l.Info(msg, argsToFields(args))
	case hclog.Warn:
		h.l.Warning(msg, argsToFields(args))
	case hclog.Error:
		h.l.Error(msg, argsToFields(args), nil)
	}
}

func (h *hclogBridge) Trace(msg string, args ...interface{}) { h.l.Debug(msg, argsToFields(args)) }
func (h *hclogBridge) Debug(msg string, args ...interface{}) { h.l.Debug(msg, argsToFields(args)) }
func (h *hclogBridge) Info(msg string, args ...interface{})  { h.l.Info(msg, argsToFields(args)) }
func (h *hclogBridge) Warn(msg string, args ...interface{})  { h.l.Warning(msg, argsToFields(args)) }
func (h *hclogBridge) Error(msg string, args ...interface{}) {
	h.l.Error(msg, argsToFields(args), nil)
}

func (h *hclogBridge) IsTrace() bool { return true }
func (h *hclogBridge) IsDebug() bool { return true }
func (h *hclogBridge) IsInfo() bool  { return true }
func (h *hclogBridge) IsWarn() bool  { return true }
func (h *hclogBridge) IsError() bool { return true }

func (h *hclogBridge) ImpliedArgs() []interface{} { return nil }
func (h *hclogBridge) Name() string               { return h.name }

func (h *hclogBridge) With(args ...interface{}) hclog.Logger {
	return &hclogBridge{l: h.l.WithFields(argsToFields(args)), name: h.name}
}

func (h *hclogBridge) Named(name string) hclog.Logger {
	if h.name == "" {
		return &hclogBridge{l: h.l, name: name}
	}
	return &hclogBridge{l: h.l, name: h.name + "." + name}
}

func (h *hclogBridge) ResetNamed(name string) hclog.Logger {
	return &hclogBridge{l: h.l, name: name}
}

func (h *hclogBridge) SetLevel(level hclog.Level) {}

func (h *hclogBridge) GetLevel() hclog.Level { return hclog.Info }

func (h *hclogBridge) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(h.StandardWriter(opts), "", 0)
}

func (h *hclogBridge) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return hclogWriter{h: h}
}

type hclogWriter struct{ h *hclogBridge }

func (w hclogWriter) Write(p []byte) (int, error) {
	w.h.l.Info(string(p), nil)
	return len(p), nil
}

func argsToFields(args []interface{}) Fields {
	if len(args) == 0 {
		return nil
	}
	f := make(Fields, len(args)/2+1)
	for i := 0; i+1 < len(args); i += 2 {
		key := fmt.Sprintf("%v", args[i])
		f[key] = args[i+1]
	}
	return f
}
