package bdmv

import (
	"testing"

	"github.com/matryer/is"

	"github.com/kanzaki-rei/bdpl-go/pkg/model"
)

func TestCodecNameKnownAndUnknown(t *testing.T) {
	is := is.New(t)
	is.Equal(codecName(0x1B), "H.264/AVC")
	is.Equal(codecName(0xFF), "0xFF")
}

func TestStreamClassFor(t *testing.T) {
	is := is.New(t)
	is.Equal(streamClassFor(0x1B), model.StreamVideo)
	is.Equal(streamClassFor(0x81), model.StreamAudio)
	is.Equal(streamClassFor(0x90), model.StreamGraphic)
}
