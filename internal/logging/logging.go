package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Unknown levels fall back to
// disabled so installer output stays exactly what the operator expects.
func Setup(level string, output io.Writer) {
	zlevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zlevel = zerolog.Disabled
	}
	zerolog.SetGlobalLevel(zlevel)

	noColor := true
	if f, ok := output.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        output,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	})
}
