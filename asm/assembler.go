// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/rvmem/riscv"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"XLEN":   "32",
}

// Assembler is a single pass macro assembler for RV32 memory-access
// instructions, register presets and initial data.
type Assembler struct {
	Verbose bool           // If set, verbosely logs the assembler actions.
	Logger  *logrus.Logger // Destination of the verbose log, or the standard logger.
	Opcode  []Opcode       // List of generated opcodes.
	Preset  []Preset       // List of register presets.
	Segment []Segment      // List of data segments.

	predefine map[string]string   // Predefines
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	origin uint32 // Data cursor set by .org
}

// logger returns the verbose log destination.
func (asm *Assembler) logger() *logrus.Logger {
	if asm.Logger == nil {
		return logrus.StandardLogger()
	}
	return asm.Logger
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 1 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	v64, err := strconv.ParseInt(word, 0, 34)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrValueRange
		return
	}

	value = uint32(v64)

	if invert {
		value = ^value
	}

	return
}

// resolve returns the equate for a word, or the word itself.
func (asm *Assembler) resolve(word string) string {
	equate, ok := asm.Equate[word]
	if ok {
		return equate
	}
	return word
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(int64(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 > 0xffffffff || st_int64 < -int64(0x80000000) {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line into words, expanding macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		expr, base := splitBase(str)
		value, _err := asm.parenEval(expr[2 : len(expr)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x%v", value, base)
	})
	if err != nil {
		return
	}

	// Operand separators
	line = strings.ReplaceAll(line, ",", " ")

	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		words[n] = asm.resolve(word)
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// splitBase separates a trailing '(reg)' from a '$(expr)(reg)' operand.
func splitBase(str string) (expr, base string) {
	expr = str
	if !strings.HasSuffix(str, ")") {
		return
	}
	depth := 0
	for n := range len(str) {
		switch str[n] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && n != len(str)-1 {
				return str[:n+1], str[n+1:]
			}
		}
	}
	return
}

// operandRe matches 'offset(base)'; the offset may be empty.
var operandRe = regexp.MustCompile(`^([^()]*)\(([^()]+)\)$`)

// parseOperand parses a memory operand, 'offset(base)'.
func (asm *Assembler) parseOperand(word string) (imm uint32, base riscv.Register, err error) {
	match := operandRe.FindStringSubmatch(word)
	if match == nil {
		err = ErrOperandSyntax
		return
	}

	base, err = riscv.ParseRegister(asm.resolve(match[2]))
	if err != nil {
		return
	}

	offset := "0"
	if len(match[1]) > 0 {
		offset = asm.resolve(match[1])
	}

	value, err := asm.valueOf(offset)
	if err != nil {
		return
	}

	imm, err = riscv.Imm12(int64(int32(value)))
	return
}

// dataWidth maps the data directives to their item size in bytes.
var dataWidth = map[string]int{
	".byte": 1,
	".half": 2,
	".word": 4,
}

// emit appends data at the .org cursor, extending the last segment if
// it ends there.
func (asm *Assembler) emit(lineno int, data []byte) {
	last := len(asm.Segment) - 1
	if last >= 0 {
		seg := &asm.Segment[last]
		if uint64(seg.Address)+uint64(len(seg.Data)) == uint64(asm.origin) {
			seg.Data = append(seg.Data, data...)
			asm.origin += uint32(len(data))
			return
		}
	}

	asm.Segment = append(asm.Segment, Segment{LineNo: lineno, Address: asm.origin, Data: slices.Clone(data)})
	asm.origin += uint32(len(data))
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case ".reg":
		// .reg REG VALUE
		if len(words) != 3 {
			err = ErrDirectiveSyntax
			return
		}
		var reg riscv.Register
		reg, err = riscv.ParseRegister(words[1])
		if err != nil {
			return
		}
		var value uint32
		value, err = asm.valueOf(words[2])
		if err != nil {
			return
		}
		asm.Preset = append(asm.Preset, Preset{LineNo: lineno, Register: reg, Value: value})
	case ".org":
		// .org ADDRESS
		if len(words) != 2 {
			err = ErrDirectiveSyntax
			return
		}
		asm.origin, err = asm.valueOf(words[1])
	case ".byte", ".half", ".word":
		// .byte VALUE...
		if len(words) < 2 {
			err = ErrDirectiveSyntax
			return
		}
		size := dataWidth[words[0]]
		var data []byte
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if size < 4 {
				bits := uint(size * 8)
				high := value >> bits
				if high != 0 && riscv.SignExtend(value&(1<<bits-1), bits) != value {
					err = ErrValueRange
					return
				}
			}
			for n := range size {
				data = append(data, byte(value>>(8*n)))
			}
		}
		if uint64(asm.origin)+uint64(len(data)) > 1<<32 {
			err = ErrValueRange
			return
		}
		asm.emit(lineno, data)
	case ".inst":
		// .inst WORD
		if len(words) != 2 {
			err = ErrDirectiveSyntax
			return
		}
		var value uint32
		value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		var inst riscv.Instruction
		inst, err = riscv.Decode(value)
		if err != nil {
			return
		}
		asm.Opcode = append(asm.Opcode, Opcode{LineNo: lineno, Words: words, Instruction: inst})
	default:
		// op REG OFFSET(BASE)
		var op riscv.Opcode
		op, err = riscv.ParseOpcode(strings.ToLower(words[0]))
		if err != nil {
			return
		}
		if len(words) != 3 {
			err = ErrOperandCount
			return
		}
		var reg riscv.Register
		reg, err = riscv.ParseRegister(words[1])
		if err != nil {
			return
		}
		var imm uint32
		var base riscv.Register
		imm, base, err = asm.parseOperand(words[2])
		if err != nil {
			return
		}
		var inst riscv.Instruction
		if op.IsLoad() {
			inst = riscv.NewLoad(op, reg, base, imm)
		} else {
			inst = riscv.NewStore(op, base, reg, imm)
		}
		asm.Opcode = append(asm.Opcode, Opcode{LineNo: lineno, Words: words, Instruction: inst})
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Opcode = asm.Opcode[:0]
	asm.Preset = asm.Preset[:0]
	asm.Segment = asm.Segment[:0]
	asm.origin = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			asm.logger().WithField("line", lineno).Info(text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	prog = &Program{
		Opcodes:  slices.Clone(asm.Opcode),
		Presets:  slices.Clone(asm.Preset),
		Segments: slices.Clone(asm.Segment),
	}

	return
}
