// Package defs contains shared definitions.
package defs

import (
	"time"

	"github.com/promptcam/promptcam/internal/conf"
)

// APIError is a generic error.
type APIError struct {
	Error string `json:"error"`
}

// APIInfo contains server information.
type APIInfo struct {
	Version string    `json:"version"`
	Started time.Time `json:"started"`
}

// APIState is the state of the capture and scroll subsystems.
type APIState struct {
	RecordingState     string               `json:"recordingState"`
	RecordingID        string               `json:"recordingId,omitempty"`
	AspectRatioMode    conf.AspectRatioMode `json:"aspectRatioMode"`
	ActiveFormatWidth  int                  `json:"activeFormatWidth"`
	ActiveFormatHeight int                  `json:"activeFormatHeight"`
	ScrollActive       bool                 `json:"scrollActive"`
	ScrollOffset       float64              `json:"scrollOffset"`
	ScrollSpeed        float64              `json:"scrollSpeed"`
	ScrollDisplaySpeed int                  `json:"scrollDisplaySpeed"`
}

// APIRecordingStart is the response to a record start request.
type APIRecordingStart struct {
	ID string `json:"id"`
}

// APIRecordingStop is the response to a record stop request.
type APIRecordingStop struct {
	Path     string  `json:"path,omitempty"`
	Duration float64 `json:"duration"`
}

// APIRecording is a finished recording.
type APIRecording struct {
	ID    string    `json:"id"`
	Path  string    `json:"path"`
	Start time.Time `json:"start"`
}

// APIRecordingList is a list of recordings.
type APIRecordingList struct {
	ItemCount int             `json:"itemCount"`
	PageCount int             `json:"pageCount"`
	Items     []*APIRecording `json:"items"`
}

// APIScrollDrag is the body of a drag move request.
type APIScrollDrag struct {
	Offset float64 `json:"offset"`
}

// APIScroll is the scroll state.
type APIScroll struct {
	Active       bool    `json:"active"`
	Offset       float64 `json:"offset"`
	Speed        float64 `json:"speed"`
	DisplaySpeed int     `json:"displaySpeed"`
}

// APIScript is the teleprompter script.
type APIScript struct {
	Text string `json:"text"`
}
