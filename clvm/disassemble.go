package clvm

import (
	"encoding/hex"
	"strings"
)

// Disassemble renders p as an s-expression in the style of
// the Chia tools: operator atoms in call position print as
// keywords, short canonical integers as decimal, printable
// text as a quoted string and everything else as 0x-hex.
func Disassemble(p *Program) string {
	var b strings.Builder
	disassemble(&b, p, false)
	return b.String()
}

func disassemble(b *strings.Builder, p *Program, head bool) {
	if p.IsAtom() {
		b.WriteString(atomString(p.atom, head))
		return
	}
	b.WriteByte('(')
	disassemble(b, p.first, true)
	p = p.rest
	for p.IsPair() {
		b.WriteByte(' ')
		disassemble(b, p.first, false)
		p = p.rest
	}
	if !p.IsNil() {
		b.WriteString(" . ")
		disassemble(b, p, false)
	}
	b.WriteByte(')')
}

func atomString(a []byte, head bool) string {
	if len(a) == 0 {
		return "()"
	}
	if head && len(a) == 1 {
		if s := Op(a[0]).String(); s != "" {
			return s
		}
	}
	if len(a) <= 2 && isCanonicalInt(a) {
		return intFromBytes(a).String()
	}
	if len(a) > 2 && isPrintable(a) {
		return `"` + string(a) + `"`
	}
	return "0x" + hex.EncodeToString(a)
}

func isCanonicalInt(a []byte) bool {
	if len(a) < 2 {
		return true
	}
	switch a[0] {
	case 0x00:
		return a[1]&0x80 != 0
	case 0xff:
		return a[1]&0x80 == 0
	}
	return true
}

func isPrintable(a []byte) bool {
	for _, c := range a {
		if c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}
