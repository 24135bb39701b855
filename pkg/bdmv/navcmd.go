package bdmv

import "github.com/kanzaki-rei/bdpl-go/pkg/model"

// navCommandSize is the fixed width of one HDMV navigation command.
const navCommandSize = 12

// decodeNavCommand decodes a 12-byte HDMV navigation command.
//
// Layout (grounded on bdpl/bdmv/movieobject_bdmv.py's _decode_nav_command):
//
//	byte 0:  [op_cnt(3)][grp(2)][sub_grp(3)]
//	byte 1:  [imm_op1(1)][imm_op2(1)][reserved(2)][op_code(4)]
//	bytes 2-3:  reserved
//	bytes 4-7:  operand1 (big-endian u32)
//	bytes 8-11: operand2 (big-endian u32)
func decodeNavCommand(raw []byte) model.NavCommand {
	b0, b1 := raw[0], raw[1]
	group := (b0 >> 3) & 0x03
	subGroup := b0 & 0x07
	immOp1 := (b1>>7)&1 == 1
	immOp2 := (b1>>6)&1 == 1
	opCode := b1 & 0x0F
	operand1 := uint32(raw[4])<<24 | uint32(raw[5])<<16 | uint32(raw[6])<<8 | uint32(raw[7])
	operand2 := uint32(raw[8])<<24 | uint32(raw[9])<<16 | uint32(raw[10])<<8 | uint32(raw[11])
	return model.NavCommand{
		Group:    group,
		SubGroup: subGroup,
		OpCode:   opCode,
		ImmOp1:   immOp1,
		ImmOp2:   immOp2,
		Operand1: operand1,
		Operand2: operand2,
	}
}
