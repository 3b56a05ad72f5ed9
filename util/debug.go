// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"debug/elf"
	"debug/gosym"
	"errors"
	"fmt"
)

// LookupSym returns the named symbol from an ELF image.
func LookupSym(buf []byte, name string) (*elf.Symbol, error) {
	exe, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return nil, err
	}

	syms, err := exe.Symbols()

	if err != nil {
		return nil, err
	}

	for _, sym := range syms {
		if sym.Name == name {
			return &sym, nil
		}
	}

	return nil, errors.New("symbol not found")
}

// PCToLine resolves a program counter within an ELF image to its source
// file and line.
func PCToLine(buf []byte, pc uint64) (s string, err error) {
	exe, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return
	}

	lineTableData, err := exe.Section(".gopclntab").Data()

	if err != nil {
		return
	}

	lineTable := gosym.NewLineTable(lineTableData, exe.Section(".text").Addr)

	symTableData, err := exe.Section(".gosymtab").Data()

	if err != nil {
		return
	}

	symTable, err := gosym.NewTable(symTableData, lineTable)

	if err != nil {
		return
	}

	file, line, _ := symTable.PCToLine(pc)

	return fmt.Sprintf("%s:%d", file, line), nil
}
