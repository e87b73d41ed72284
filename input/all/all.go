// Package all imports all backends implemented by the input package.
package all

import (
	_ "github.com/noriah/catscope/input/ffmpeg"
	_ "github.com/noriah/catscope/input/file"
	_ "github.com/noriah/catscope/input/parec"
	_ "github.com/noriah/catscope/input/tone"
)
