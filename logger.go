package d3dbsp

import (
	"github.com/rs/zerolog"
)

var logger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	logger = l
}
