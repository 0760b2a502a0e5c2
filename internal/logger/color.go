package logger

import (
	"github.com/gookit/color"
)

var (
	colorGray  = color.Gray.Code()
	colorDebug = color.Debug.Code()
	colorGreen = color.Green.Code()
	colorWarn  = color.Warn.Code()
	colorError = color.Error.Code()
)

func renderColor(code string, in string) string {
	return color.RenderString(code, in)
}
