package protocol

import (
	"bytes"
	"io"
)

const maxLine = 4096

// lineReader splits a polled byte stream into lines. A Read returning no
// bytes and no error means nothing is pending yet, which is how a serial
// port with a read timeout reports silence.
type lineReader struct {
	r   io.Reader
	buf []byte
	err error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: r}
}

// next returns the next complete line without its terminator. ok is false
// when no full line is available; err is set once the reader has failed and
// every buffered byte has been handed out.
func (l *lineReader) next() (line string, ok bool, err error) {
	if line, ok := l.take(); ok {
		return line, true, nil
	}
	if l.err == nil {
		var chunk [256]byte
		n, err := l.r.Read(chunk[:])
		l.buf = append(l.buf, chunk[:n]...)
		l.err = err
		if line, ok := l.take(); ok {
			return line, true, nil
		}
	}
	if l.err != nil {
		// flush an unterminated tail before reporting the error
		if len(l.buf) > 0 {
			line := string(l.buf)
			l.buf = l.buf[:0]
			return line, true, nil
		}
		return "", false, l.err
	}
	return "", false, nil
}

func (l *lineReader) take() (string, bool) {
	i := bytes.IndexByte(l.buf, '\n')
	if i < 0 {
		if len(l.buf) < maxLine {
			return "", false
		}
		i = len(l.buf)
	}
	line := string(l.buf[:i])
	if i < len(l.buf) {
		i++
	}
	l.buf = l.buf[:copy(l.buf, l.buf[i:])]
	return line, true
}
