// Package errors extends the standard errors package with errors annotated by slog attributes and the source
// location they were created at.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

// Re-exports so that callers only import this package.
//
//nolint:gochecknoglobals // aliases.
var (
	Is     = stderrors.Is
	As     = stderrors.As
	Unwrap = stderrors.Unwrap
	Join   = stderrors.Join
)

// NewSentinel creates an error meant to be compared with Is. It carries no source location.
func NewSentinel(msg string) error {
	return stderrors.New(msg) //nolint:err113 // sentinel constructor.
}

type annotatedError struct {
	err   error
	msg   string
	attrs []slog.Attr
	pc    uintptr
}

func (e *annotatedError) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	// Skip runtime.Callers, callerPC and the exported constructor.
	if runtime.Callers(skip+3, pcs[:]) == 0 { //nolint:mnd // see above
		return 0
	}
	return pcs[0]
}

// New creates an error annotated with attrs and the location of the caller.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{err: nil, msg: msg, attrs: attrs, pc: callerPC(0)}
}

// Wrap annotates err with a message, attrs and the location of the caller.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{err: err, msg: msg, attrs: attrs, pc: callerPC(0)}
}

// DecoratePanic converts a recovered panic value into an error located at the panicking statement.
// It must be called from the deferred function that recovered.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	err, ok := recovered.(error)
	if !ok {
		err = NewSentinel(fmt.Sprint(recovered))
	}
	return &annotatedError{err: err, msg: "panic", attrs: nil, pc: panicPC()}
}

// panicPC finds the frame that called panic by looking for the frame below runtime.gopanic.
func panicPC() uintptr {
	const depth = 32
	pcs := make([]uintptr, depth)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	afterPanic := false
	for {
		frame, more := frames.Next()
		if afterPanic {
			return frame.PC
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			return 0
		}
	}
}

// SlogError renders err as an slog group with the message, the annotations collected from the whole chain and the
// source location of the innermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	var (
		annotations []any
		source      string
	)
	walk(err, func(e *annotatedError) {
		for _, a := range e.attrs {
			annotations = append(annotations, a)
		}
		if e.pc != 0 {
			source = sourceOf(e.pc)
		}
	})

	attrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	return slog.Group("error", attrs...)
}

// walk visits every annotated error in the tree of err, outermost first.
func walk(err error, visit func(*annotatedError)) {
	for err != nil {
		if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // walking the chain manually.
			visit(ae)
		}
		switch u := err.(type) { //nolint:errorlint // walking the chain manually.
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner, visit)
			}
			return
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		default:
			return
		}
	}
}

func sourceOf(pc uintptr) string {
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}
	file := frame.File
	if i := strings.LastIndex(file, "/"); i >= 0 {
		file = file[i+1:]
	}
	return file + ":" + strconv.Itoa(frame.Line)
}
