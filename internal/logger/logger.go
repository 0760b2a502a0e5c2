// Package logger contains a logger implementation.
package logger

import (
	"bytes"
	"fmt"
	"sync"
	"time"
)

// Level is a log level.
type Level int

// Log levels.
const (
	Debug Level = iota + 1
	Info
	Warn
	Error
)

// Destination is a log destination.
type Destination int

const (
	// DestinationStdout writes logs to the standard output.
	DestinationStdout Destination = iota

	// DestinationFile writes logs to a file.
	DestinationFile

	// DestinationSyslog writes logs to the system logger.
	DestinationSyslog
)

// Writer is an object that provides a log method.
type Writer interface {
	Log(level Level, format string, args ...interface{})
}

type destination interface {
	log(t time.Time, level Level, format string, args ...interface{})
	close()
}

// Logger is a log handler.
type Logger struct {
	Level        Level
	Destinations []Destination
	FilePath     string
	SysLogPrefix string

	destinations []destination
	mutex        sync.Mutex
	timeNow      func() time.Time
}

// Initialize initializes a Logger.
func (lh *Logger) Initialize() error {
	if lh.timeNow == nil {
		lh.timeNow = time.Now
	}

	for _, destType := range lh.Destinations {
		switch destType {
		case DestinationStdout:
			lh.destinations = append(lh.destinations, newDestinationStdout())

		case DestinationFile:
			dest, err := newDestinationFile(lh.FilePath)
			if err != nil {
				lh.Close()
				return err
			}
			lh.destinations = append(lh.destinations, dest)

		case DestinationSyslog:
			dest, err := newDestinationSyslog(lh.SysLogPrefix)
			if err != nil {
				lh.Close()
				return err
			}
			lh.destinations = append(lh.destinations, dest)
		}
	}

	return nil
}

// Close closes a Logger.
func (lh *Logger) Close() {
	for _, dest := range lh.destinations {
		dest.close()
	}
	lh.destinations = nil
}

// https://golang.org/src/log/log.go#L78
func itoa(i int, wid int) []byte {
	// Assemble decimal in reverse order.
	var b [20]byte
	bp := len(b) - 1
	for i >= 10 || wid > 1 {
		wid--
		q := i / 10
		b[bp] = byte('0' + i - q*10)
		bp--
		i = q
	}
	// i < 10
	b[bp] = byte('0' + i)
	return b[bp:]
}

func writeTime(buf *bytes.Buffer, t time.Time, useColor bool) {
	var intbuf bytes.Buffer

	// date
	year, month, day := t.Date()
	intbuf.Write(itoa(year, 4))
	intbuf.WriteByte('/')
	intbuf.Write(itoa(int(month), 2))
	intbuf.WriteByte('/')
	intbuf.Write(itoa(day, 2))
	intbuf.WriteByte(' ')

	// time
	hour, minute, sec := t.Clock()
	intbuf.Write(itoa(hour, 2))
	intbuf.WriteByte(':')
	intbuf.Write(itoa(minute, 2))
	intbuf.WriteByte(':')
	intbuf.Write(itoa(sec, 2))
	intbuf.WriteByte(' ')

	if useColor {
		buf.WriteString(renderColor(colorGray, intbuf.String()))
	} else {
		buf.WriteString(intbuf.String())
	}
}

func writeLevel(buf *bytes.Buffer, level Level, useColor bool) {
	switch level {
	case Debug:
		if useColor {
			buf.WriteString(renderColor(colorDebug, "DEB"))
		} else {
			buf.WriteString("DEB")
		}

	case Info:
		if useColor {
			buf.WriteString(renderColor(colorGreen, "INF"))
		} else {
			buf.WriteString("INF")
		}

	case Warn:
		if useColor {
			buf.WriteString(renderColor(colorWarn, "WAR"))
		} else {
			buf.WriteString("WAR")
		}

	case Error:
		if useColor {
			buf.WriteString(renderColor(colorError, "ERR"))
		} else {
			buf.WriteString("ERR")
		}
	}
	buf.WriteByte(' ')
}

func writeContent(buf *bytes.Buffer, format string, args []interface{}) {
	fmt.Fprintf(buf, format, args...)
	buf.WriteByte('\n')
}

// Log writes a log entry.
func (lh *Logger) Log(level Level, format string, args ...interface{}) {
	if level < lh.Level {
		return
	}

	t := lh.timeNow()

	lh.mutex.Lock()
	defer lh.mutex.Unlock()

	for _, dest := range lh.destinations {
		dest.log(t, level, format, args...)
	}
}
