package bdmv

import (
	"testing"

	"github.com/matryer/is"
)

func TestDecodeNavCommandPlayPL(t *testing.T) {
	is := is.New(t)
	// group=0 (bits 4-3 of byte0), sub_group=2 (bits 2-0), op_code=0, operand1=7
	raw := []byte{0x02, 0x00, 0, 0, 0, 0, 0, 7, 0, 0, 0, 0}
	cmd := decodeNavCommand(raw)
	is.Equal(cmd.Group, uint8(0))
	is.Equal(cmd.SubGroup, uint8(2))
	is.Equal(cmd.OpCode, uint8(0))
	is.Equal(cmd.Operand1, uint32(7))
	is.True(cmd.IsPlayPlaylist())
	is.True(!cmd.IsJumpTitle())
}

func TestDecodeNavCommandJumpTitle(t *testing.T) {
	is := is.New(t)
	// group=0, sub_group=1, op_code=1, operand1=3
	raw := []byte{0x01, 0x01, 0, 0, 0, 0, 0, 3, 0, 0, 0, 0}
	cmd := decodeNavCommand(raw)
	is.True(cmd.IsJumpTitle())
	is.Equal(cmd.Operand1, uint32(3))
}

func TestDecodeNavCommandImmediateFlags(t *testing.T) {
	is := is.New(t)
	raw := []byte{0, 0b11000000, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	cmd := decodeNavCommand(raw)
	is.True(cmd.ImmOp1)
	is.True(cmd.ImmOp2)
}
