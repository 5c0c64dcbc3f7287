package inst

import "fmt"

// operand shapes, used to pick a rendering for each mnemonic
type form int

const (
	formNone    form = iota // RET
	formImm                 // JMP 64
	formReg                 // JMR R1, PSHR R1
	formRegImm              // BNZ R1, #64 / MOVI R1, #5
	formRegAddr             // LDR R1, 512
	formRegReg              // MOV R1, R2 / ILDR R1, R2
	formRRR                 // ADD R1, R2, R3
	formRRImm               // ADDI R1, R2, #5
	formTrap                // TRP #0
)

var opForms = map[OpCode]form{
	JMP: formImm, JMR: formReg,
	BNZ: formRegImm, BGT: formRegImm, BLT: formRegImm, BRZ: formRegImm,
	MOV: formRegReg, MOVI: formRegImm, LDA: formRegImm,
	STR: formRegAddr, LDR: formRegAddr, STB: formRegAddr, LDB: formRegAddr,
	ISTR: formRegReg, ILDR: formRegReg, ISTB: formRegReg, ILDB: formRegReg,
	ADD: formRRR, SUB: formRRR, MUL: formRRR, DIV: formRRR, SDIV: formRRR,
	ADDI: formRRImm, SUBI: formRRImm, MULI: formRRImm, DIVI: formRRImm,
	AND: formRRR, OR: formRRR, CMP: formRRR, CMPI: formRRImm,
	TRP: formTrap,
	ALCI: formRegImm, ALLC: formRegAddr, IALLC: formRegReg,
	PSHR: formReg, PSHB: formReg, POPR: formReg, POPB: formReg,
	CALL: formImm, RET: formNone,
}

// Disassemble renders one instruction as assembler text.
func Disassemble(i Instruction) string {
	name := i.Op.String()
	switch opForms[i.Op] {
	case formImm:
		return fmt.Sprintf("%s %d", name, i.Imm)
	case formReg:
		return fmt.Sprintf("%s %s", name, Reg(i.Op1))
	case formRegImm:
		return fmt.Sprintf("%s %s, #%d", name, Reg(i.Op1), i.Imm)
	case formRegAddr:
		return fmt.Sprintf("%s %s, %d", name, Reg(i.Op1), i.Imm)
	case formRegReg:
		return fmt.Sprintf("%s %s, %s", name, Reg(i.Op1), Reg(i.Op2))
	case formRRR:
		return fmt.Sprintf("%s %s, %s, %s", name, Reg(i.Op1), Reg(i.Op2), Reg(i.Op3))
	case formRRImm:
		return fmt.Sprintf("%s %s, %s, #%d", name, Reg(i.Op1), Reg(i.Op2), i.Imm)
	case formTrap:
		return fmt.Sprintf("%s #%d", name, i.Imm)
	case formNone:
		return name
	}
	return name
}
