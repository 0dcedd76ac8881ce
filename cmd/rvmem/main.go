// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/rvmem/emulator"
	"github.com/ezrec/rvmem/memory"
)

// uint32Var registers a flag parsed as a 32-bit unsigned integer in any base.
func uint32Var(value *uint32, name string, usage string) {
	flag.Func(name, usage, func(text string) (err error) {
		v, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return
		}
		*value = uint32(v)
		return
	})
}

func main() {
	var compile string
	var model string
	var base uint32
	var size uint32 = 0x10000
	var pages int
	var readOnly bool
	var save bool
	var verbose bool

	flag.StringVar(&compile, "c", "-", "Script file to assemble, - for stdin")
	flag.StringVar(&model, "m", "sparse", "Memory model: sparse or fixed")
	uint32Var(&base, "base", "Fixed memory base address")
	uint32Var(&size, "size", "Fixed memory size in bytes")
	flag.IntVar(&pages, "pages", 0, "Sparse memory page limit, 0 for unlimited")
	flag.BoolVar(&readOnly, "ro", false, "Make memory read-only after loading")
	flag.BoolVar(&save, "s", false, "Print the encoded program, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	log := logrus.StandardLogger()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	var mem memory.Memory
	var mode *memory.Mode
	switch model {
	case "sparse":
		sm := memory.NewSparse()
		sm.MaxPages = pages
		mem, mode = sm, &sm.Mode
	case "fixed":
		fm := memory.NewFixed(base, size)
		mem, mode = fm, &fm.Mode
	default:
		log.Fatalf("%v: Unknown memory model: %v", os.Args[0], model)
	}

	emu := emulator.NewEmulator(mem)
	emu.Verbose = verbose
	emu.Logger = log

	var inf io.Reader = os.Stdin
	if compile != "-" {
		file, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer file.Close()
		inf = file
	}

	prog, err := emu.Assembler().Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	if save {
		for pc, inst := range prog.Instructions() {
			fmt.Printf("%08x: %08x  %v\n", pc, inst.Encode(), inst)
		}
		return
	}

	err = emu.Load(prog)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	if readOnly {
		*mode = memory.MODE_RO
	}

	err = emu.Run()

	for _, step := range emu.Trace {
		fmt.Println(step)
	}
	fmt.Print(emu.Cpu)

	if err != nil {
		log.WithFields(logrus.Fields{
			"line": emu.LineNo(),
			"pc":   fmt.Sprintf("%08x", emu.Pc),
		}).Fatal(err)
	}
}
