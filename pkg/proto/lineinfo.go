package proto

import "sort"

const (
	// AbsLineMarker in LineInfo means the line for that instruction is
	// stored in AbsLineInfo.
	AbsLineMarker = -0x80

	// limLineDiff bounds the deltas LineInfo can hold.
	limLineDiff = 0x80

	// maxInstrWithoutAbs is the longest run of delta entries before an
	// absolute anchor is forced, so lookups never walk far.
	maxInstrWithoutAbs = 128
)

// HasLineInfo reports whether the prototype carries a line table.
func (p *Prototype) HasLineInfo() bool {
	return len(p.LineInfo) > 0
}

// Line returns the source line of instruction pc, or -1 when the
// prototype has no line information.
func (p *Prototype) Line(pc int) int {
	if !p.HasLineInfo() || pc < 0 || pc >= len(p.LineInfo) {
		return -1
	}
	basePC, line := p.baseLine(pc)
	for basePC++; basePC <= pc; basePC++ {
		line += int(p.LineInfo[basePC])
	}
	return line
}

// baseLine finds the closest absolute anchor at or before pc.
func (p *Prototype) baseLine(pc int) (int, int) {
	n := sort.Search(len(p.AbsLineInfo), func(i int) bool {
		return p.AbsLineInfo[i].PC > pc
	})
	if n == 0 {
		return -1, p.LineDefined
	}
	abs := p.AbsLineInfo[n-1]
	return abs.PC, abs.Line
}

// SetLines replaces the line table with one encoding lines, which holds
// the absolute source line of each instruction in order.
func (p *Prototype) SetLines(lines []int) {
	p.LineInfo = make([]int8, len(lines))
	p.AbsLineInfo = nil

	previous := p.LineDefined
	sinceAbs := 0
	for pc, line := range lines {
		diff := line - previous
		if diff <= -limLineDiff || diff >= limLineDiff || sinceAbs >= maxInstrWithoutAbs {
			p.AbsLineInfo = append(p.AbsLineInfo, AbsLineInfo{PC: pc, Line: line})
			diff = AbsLineMarker
			sinceAbs = 0
		}
		sinceAbs++
		p.LineInfo[pc] = int8(diff)
		previous = line
	}
}
