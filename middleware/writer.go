package middleware

import (
	"bufio"
	"io"
	"net"
	"net/http"
)

// WrapResponseWriter proxies an http.ResponseWriter, allowing hooks into the response process.
type WrapResponseWriter interface {
	http.ResponseWriter
	Status() int
	BytesWritten() int
	Tee(io.Writer)
	Unwrap() http.ResponseWriter

	// BeforeWriteHeader registers a hook run once right before the status line
	// is sent, the last moment headers (cookies) can still change
	BeforeWriteHeader(func(status int))
}

// NewWrapResponseWriter wraps w unless it already is wrapped
func NewWrapResponseWriter(w http.ResponseWriter) WrapResponseWriter {
	if ww, ok := w.(WrapResponseWriter); ok {
		return ww
	}
	return &universalWriter{basicWriter: basicWriter{ResponseWriter: w}}
}

type basicWriter struct {
	http.ResponseWriter
	wroteHeader bool
	code        int
	bytes       int
	tee         io.Writer
	before      []func(int)
}

func (b *basicWriter) WriteHeader(code int) {
	if b.wroteHeader || (code >= 100 && code <= 199 && code != http.StatusSwitchingProtocols) {
		return
	}

	b.code = code
	b.wroteHeader = true

	for i := len(b.before) - 1; i >= 0; i-- {
		b.before[i](code)
	}

	b.ResponseWriter.WriteHeader(code)
}

func (b *basicWriter) Write(buf []byte) (int, error) {
	b.maybeWriteHeader()

	n, err := b.ResponseWriter.Write(buf)
	if b.tee != nil {
		_, teeErr := b.tee.Write(buf[:n])
		if err == nil {
			err = teeErr
		}
	}

	b.bytes += n
	return n, err
}

func (b *basicWriter) maybeWriteHeader() {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}
}

func (b *basicWriter) Status() int {
	if b.code == 0 {
		return http.StatusOK
	}
	return b.code
}

func (b *basicWriter) BytesWritten() int              { return b.bytes }
func (b *basicWriter) Tee(w io.Writer)                { b.tee = w }
func (b *basicWriter) Unwrap() http.ResponseWriter    { return b.ResponseWriter }
func (b *basicWriter) BeforeWriteHeader(fn func(int)) { b.before = append(b.before, fn) }

type universalWriter struct {
	basicWriter
}

// Flush implements http.Flusher
func (u *universalWriter) Flush() {
	if f, ok := u.ResponseWriter.(http.Flusher); ok {
		u.maybeWriteHeader()
		f.Flush()
	}
}

// Hijack implements http.Hijacker
func (u *universalWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := u.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Compile time checks
var (
	_ http.Flusher       = &universalWriter{}
	_ http.Hijacker      = &universalWriter{}
	_ WrapResponseWriter = &universalWriter{}
)
