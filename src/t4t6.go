package spanfax

/*------------------------------------------------------------------
 *
 * Purpose:	T.4/T.6 bi-level image coding (C10): modified Huffman
 *		(1D) and modified READ (2D) run-length coding of single
 *		rows. No EOL/RTC/EOFB framing and no minimum-row-length
 *		padding is written or parsed; the EOL constants below are
 *		not used by the row coders.
 *
 * The terminating/make-up code tables below are transcribed verbatim
 * (length, code, run_length) from the original t4_white_codes/
 * t4_black_codes tables, and the nine 2D mode codes from the original
 * encode_2d_row's local table. Per those tables' own wire convention,
 * a code's bits go out least-significant-bit first; the bit patterns
 * in the original's comments are its mirror image.
 *
 *---------------------------------------------------------------*/

import "sync"

// t4Code is one terminating or make-up code: length in bits, the code
// value (LSB transmitted first), and the run length it represents.
type t4Code struct {
	length int
	code   uint16
	run    int
}

// t4WhiteCodes and t4BlackCodes are the T.4 modified-Huffman run-length
// tables (ITU-T T.4 Tables 2-4), transcribed from the original C source.
var t4WhiteCodes = []t4Code{
	{8, 0x00AC, 0}, {6, 0x0038, 1}, {4, 0x000E, 2}, {4, 0x0001, 3},
	{4, 0x000D, 4}, {4, 0x0003, 5}, {4, 0x0007, 6}, {4, 0x000F, 7},
	{5, 0x0019, 8}, {5, 0x0005, 9}, {5, 0x001C, 10}, {5, 0x0002, 11},
	{6, 0x0004, 12}, {6, 0x0030, 13}, {6, 0x000B, 14}, {6, 0x002B, 15},
	{6, 0x0015, 16}, {6, 0x0035, 17}, {7, 0x0072, 18}, {7, 0x0018, 19},
	{7, 0x0008, 20}, {7, 0x0074, 21}, {7, 0x0060, 22}, {7, 0x0010, 23},
	{7, 0x000A, 24}, {7, 0x006A, 25}, {7, 0x0064, 26}, {7, 0x0012, 27},
	{7, 0x000C, 28}, {8, 0x0040, 29}, {8, 0x00C0, 30}, {8, 0x0058, 31},
	{8, 0x00D8, 32}, {8, 0x0048, 33}, {8, 0x00C8, 34}, {8, 0x0028, 35},
	{8, 0x00A8, 36}, {8, 0x0068, 37}, {8, 0x00E8, 38}, {8, 0x0014, 39},
	{8, 0x0094, 40}, {8, 0x0054, 41}, {8, 0x00D4, 42}, {8, 0x0034, 43},
	{8, 0x00B4, 44}, {8, 0x0020, 45}, {8, 0x00A0, 46}, {8, 0x0050, 47},
	{8, 0x00D0, 48}, {8, 0x004A, 49}, {8, 0x00CA, 50}, {8, 0x002A, 51},
	{8, 0x00AA, 52}, {8, 0x0024, 53}, {8, 0x00A4, 54}, {8, 0x001A, 55},
	{8, 0x009A, 56}, {8, 0x005A, 57}, {8, 0x00DA, 58}, {8, 0x0052, 59},
	{8, 0x00D2, 60}, {8, 0x004C, 61}, {8, 0x00CC, 62}, {8, 0x002C, 63},
	{5, 0x001B, 64}, {5, 0x0009, 128}, {6, 0x003A, 192}, {7, 0x0076, 256},
	{8, 0x006C, 320}, {8, 0x00EC, 384}, {8, 0x0026, 448}, {8, 0x00A6, 512},
	{8, 0x0016, 576}, {8, 0x00E6, 640}, {9, 0x0066, 704}, {9, 0x0166, 768},
	{9, 0x0096, 832}, {9, 0x0196, 896}, {9, 0x0056, 960}, {9, 0x0156, 1024},
	{9, 0x00D6, 1088}, {9, 0x01D6, 1152}, {9, 0x0036, 1216}, {9, 0x0136, 1280},
	{9, 0x00B6, 1344}, {9, 0x01B6, 1408}, {9, 0x0032, 1472}, {9, 0x0132, 1536},
	{9, 0x00B2, 1600}, {6, 0x0006, 1664}, {9, 0x01B2, 1728},
	{11, 0x0080, 1792}, {11, 0x0180, 1856}, {11, 0x0580, 1920},
	{12, 0x0480, 1984}, {12, 0x0C80, 2048}, {12, 0x0280, 2112},
	{12, 0x0A80, 2176}, {12, 0x0680, 2240}, {12, 0x0E80, 2304},
	{12, 0x0380, 2368}, {12, 0x0B80, 2432}, {12, 0x0780, 2496}, {12, 0x0F80, 2560},
}

var t4BlackCodes = []t4Code{
	{10, 0x03B0, 0}, {3, 0x0002, 1}, {2, 0x0003, 2}, {2, 0x0001, 3},
	{3, 0x0006, 4}, {4, 0x000C, 5}, {4, 0x0004, 6}, {5, 0x0018, 7},
	{6, 0x0028, 8}, {6, 0x0008, 9}, {7, 0x0010, 10}, {7, 0x0050, 11},
	{7, 0x0070, 12}, {8, 0x0020, 13}, {8, 0x00E0, 14}, {9, 0x0030, 15},
	{10, 0x03A0, 16}, {10, 0x0060, 17}, {10, 0x0040, 18}, {11, 0x0730, 19},
	{11, 0x00B0, 20}, {11, 0x01B0, 21}, {11, 0x0760, 22}, {11, 0x00A0, 23},
	{11, 0x0740, 24}, {11, 0x00C0, 25}, {12, 0x0530, 26}, {12, 0x0D30, 27},
	{12, 0x0330, 28}, {12, 0x0B30, 29}, {12, 0x0160, 30}, {12, 0x0960, 31},
	{12, 0x0560, 32}, {12, 0x0D60, 33}, {12, 0x04B0, 34}, {12, 0x0CB0, 35},
	{12, 0x02B0, 36}, {12, 0x0AB0, 37}, {12, 0x06B0, 38}, {12, 0x0EB0, 39},
	{12, 0x0360, 40}, {12, 0x0B60, 41}, {12, 0x05B0, 42}, {12, 0x0DB0, 43},
	{12, 0x02A0, 44}, {12, 0x0AA0, 45}, {12, 0x06A0, 46}, {12, 0x0EA0, 47},
	{12, 0x0260, 48}, {12, 0x0A60, 49}, {12, 0x04A0, 50}, {12, 0x0CA0, 51},
	{12, 0x0240, 52}, {12, 0x0EC0, 53}, {12, 0x01C0, 54}, {12, 0x0E40, 55},
	{12, 0x0140, 56}, {12, 0x01A0, 57}, {12, 0x09A0, 58}, {12, 0x0D40, 59},
	{12, 0x0340, 60}, {12, 0x05A0, 61}, {12, 0x0660, 62}, {12, 0x0E60, 63},
	{10, 0x03C0, 64}, {12, 0x0130, 128}, {12, 0x0930, 192}, {12, 0x0DA0, 256},
	{12, 0x0CC0, 320}, {12, 0x02C0, 384}, {12, 0x0AC0, 448},
	{13, 0x06C0, 512}, {13, 0x16C0, 576}, {13, 0x0A40, 640}, {13, 0x1A40, 704},
	{13, 0x0640, 768}, {13, 0x1640, 832}, {13, 0x09C0, 896}, {13, 0x19C0, 960},
	{13, 0x05C0, 1024}, {13, 0x15C0, 1088}, {13, 0x0DC0, 1152}, {13, 0x1DC0, 1216},
	{13, 0x0940, 1280}, {13, 0x1940, 1344}, {13, 0x0540, 1408}, {13, 0x1540, 1472},
	{13, 0x0B40, 1536}, {13, 0x1B40, 1600}, {13, 0x04C0, 1664}, {13, 0x14C0, 1728},
	{11, 0x0080, 1792}, {11, 0x0180, 1856}, {11, 0x0580, 1920},
	{12, 0x0480, 1984}, {12, 0x0C80, 2048}, {12, 0x0280, 2112},
	{12, 0x0A80, 2176}, {12, 0x0680, 2240}, {12, 0x0E80, 2304},
	{12, 0x0380, 2368}, {12, 0x0B80, 2432}, {12, 0x0780, 2496}, {12, 0x0F80, 2560},
}

// 2D mode codes, in the same order as the original's local table:
// VR3, VR2, VR1, V0, VL1, VL2, VL3, horizontal, pass. A vertical mode
// with diff = b1 - a1 (-3..3) sits at table position diff + 3, matching
// the original's codes[diff + 3] indexing.
var t4ModeCodes = []t4Code{
	{7, 0x60, 0}, // VR3
	{6, 0x30, 0}, // VR2
	{3, 0x06, 0}, // VR1
	{1, 0x01, 0}, // V0
	{3, 0x02, 0}, // VL1
	{6, 0x10, 0}, // VL2
	{7, 0x20, 0}, // VL3
	{3, 0x04, 0}, // horizontal
	{4, 0x08, 0}, // pass
}

const t4ModeHorizontal = 7
const t4ModePass = 8

// t4EOLCode is the 12-bit end-of-line code, 000000000001, used both
// standalone (1D lines, RTC) and as the T.6 EOFB marker (two in a row).
var t4EOLCode = t4Code{12, 0x0800, 0} // 0000 0000 0001, LSB-first as 0x800

const eolsToEndT4Page = 6
const eolsToEndT6Page = 2

// bitWriter accumulates bits LSB-first per octet, matching the way the
// image bitstream is packed by the original's put_encoded_bits.
type bitWriter struct {
	out  []byte
	acc  uint32
	bits int
}

func (w *bitWriter) writeCode(c t4Code) {
	w.acc |= uint32(c.code) << w.bits
	w.bits += c.length
	for w.bits >= 8 {
		w.out = append(w.out, byte(w.acc))
		w.acc >>= 8
		w.bits -= 8
	}
}

func (w *bitWriter) flush() []byte {
	if w.bits > 0 {
		w.out = append(w.out, byte(w.acc))
		w.acc, w.bits = 0, 0
	}
	return w.out
}

// put1DSpan emits the make-up-code-then-terminating-code sequence for
// one run length against the given table, per the original's
// put_1d_span: spans of 2560 or more repeat the top make-up code.
func put1DSpan(w *bitWriter, span int, table []t4Code) {
	top := table[63+(2560>>6)]
	for span >= 2560+64 {
		w.writeCode(top)
		span -= top.run
	}
	if span >= 64 {
		mk := table[63+(span>>6)]
		w.writeCode(mk)
		span -= mk.run
	}
	w.writeCode(table[span])
}

// runLengths converts a packed-bit row (MSB-first, 1=black) of the
// given pixel width into alternating white/black run boundaries,
// starting with a white run (possibly zero-length, if the row starts
// black) -- the cur_runs/ref_runs representation of the original.
func runLengths(row []byte, width int) []int {
	var runs []int
	color := false // false = white
	run := 0
	for x := range width {
		bit := row[x/8]&(0x80>>uint(x%8)) != 0
		if bit != color {
			runs = append(runs, run)
			run = 0
			color = bit
		}
		run++
	}
	runs = append(runs, run)
	return runs
}

// runPositions turns run lengths into cumulative changing-element
// positions (cur_runs convention): runPositions([3,2,5]) = [3,5,10].
func runPositions(runs []int) []int {
	pos := make([]int, len(runs))
	acc := 0
	for i, r := range runs {
		acc += r
		pos[i] = acc
	}
	return pos
}

// encode1DRow modified-Huffman encodes one row: alternating white/black
// spans, starting white, each against its own table.
func encode1DRow(w *bitWriter, row []byte, width int) {
	runs := runLengths(row, width)
	black := false
	for _, r := range runs {
		if black {
			put1DSpan(w, r, t4BlackCodes)
		} else {
			put1DSpan(w, r, t4WhiteCodes)
		}
		black = !black
	}
}

// encode2DRow modified-READ encodes one row against refRow (the
// previous row, or an imaginary all-white row for the first row of a
// page), following the pass/vertical/horizontal mode decision of
// ITU-T T.4 §4.2.1.3 as implemented by the original's encode_2d_row.
func encode2DRow(w *bitWriter, row, refRow []byte, width int) {
	curRuns := runPositions(runLengths(row, width))
	refRuns := runPositions(runLengths(refRow, width))
	// Pad both with repeats of the final run so lookahead past the last
	// real transition stays well-defined, mirroring the original's
	// three-element stretch.
	pad := func(p []int) []int {
		last := p[len(p)-1]
		return append(p, last, last, last)
	}
	curRuns = pad(curRuns)
	refRuns = pad(refRuns)

	pixelBlack := func(x int) bool {
		if x < 0 || x >= width {
			return false
		}
		return row[x/8]&(0x80>>uint(x%8)) != 0
	}

	a0 := 0
	aCursor := 0
	bCursor := 0
	curSteps := len(curRuns) - 3

	for {
		a1 := curRuns[aCursor]
		b1 := refRuns[bCursor]
		// Advance bCursor to keep b1 the first changing element to the
		// right of a0 with colour opposite a0, mirroring the hunt in the
		// original loop tail.
		a0Black := a0 > 0 && pixelBlack(a0-1)
		for bCursor > 0 && refRuns[bCursor-1] > a0 {
			bCursor--
		}
		for bCursor < len(refRuns)-1 && (refRuns[bCursor] <= a0 || (bCursor%2 == 0) == a0Black) {
			bCursor++
		}
		b1 = refRuns[bCursor]
		b2 := refRuns[bCursor+1]

		if b2 >= a1 {
			diff := b1 - a1
			if diff >= -3 && diff <= 3 {
				w.writeCode(t4ModeCodes[diff+3])
				a0 = a1
				aCursor++
			} else {
				a2 := curRuns[aCursor+1]
				w.writeCode(t4ModeCodes[t4ModeHorizontal])
				startBlack := a0 > 0 && pixelBlack(a0-1)
				if a0 == 0 {
					startBlack = false
				}
				if !startBlack {
					put1DSpan(w, a1-a0, t4WhiteCodes)
					put1DSpan(w, a2-a1, t4BlackCodes)
				} else {
					put1DSpan(w, a1-a0, t4BlackCodes)
					put1DSpan(w, a2-a1, t4WhiteCodes)
				}
				a0 = a2
				aCursor += 2
			}
			if a0 >= width {
				break
			}
			if aCursor >= curSteps {
				aCursor = curSteps - 1
			}
		} else {
			w.writeCode(t4ModeCodes[t4ModePass])
			a0 = b2
			if a0 >= width {
				break
			}
		}
	}
}

// bitReader walks a packed bitstream LSB-first per byte, the mirror of
// bitWriter, used by both the Huffman code decoder and the 2D mode
// decoder below.
type bitReader struct {
	data []byte
	pos  int // bit position from the start
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (r *bitReader) readBit() (bool, bool) {
	byteIdx := r.pos / 8
	if byteIdx >= len(r.data) {
		return false, false
	}
	bit := r.data[byteIdx]&(1<<uint(r.pos%8)) != 0
	r.pos++
	return bit, true
}

// huffmanIndex is a length-keyed lookup built once per table, mapping
// (length, code) to run length; codes of different lengths never
// collide because T.4's code set is a prefix code.
type huffmanIndex struct {
	byLength map[int]map[uint16]int
}

func buildHuffmanIndex(table []t4Code) *huffmanIndex {
	idx := &huffmanIndex{byLength: make(map[int]map[uint16]int)}
	for _, c := range table {
		m, ok := idx.byLength[c.length]
		if !ok {
			m = make(map[uint16]int)
			idx.byLength[c.length] = m
		}
		m[c.code] = c.run
	}
	return idx
}

var (
	whiteIndexOnce sync.Once
	whiteIndex     *huffmanIndex
	blackIndexOnce sync.Once
	blackIndex     *huffmanIndex
)

func getWhiteIndex() *huffmanIndex {
	whiteIndexOnce.Do(func() { whiteIndex = buildHuffmanIndex(t4WhiteCodes) })
	return whiteIndex
}

func getBlackIndex() *huffmanIndex {
	blackIndexOnce.Do(func() { blackIndex = buildHuffmanIndex(t4BlackCodes) })
	return blackIndex
}

// decodeRun reads one terminating-or-makeup code from r against index,
// accumulating (possibly several) make-up codes followed by one
// terminating code (run < 64), and returns the total span.
func decodeRun(r *bitReader, idx *huffmanIndex) (int, error) {
	total := 0
	for {
		run, err := decodeOneCode(r, idx)
		if err != nil {
			return 0, err
		}
		total += run
		if run < 64 {
			return total, nil
		}
	}
}

func decodeOneCode(r *bitReader, idx *huffmanIndex) (int, error) {
	var acc uint16
	for length := 1; length <= 13; length++ {
		bit, ok := r.readBit()
		if !ok {
			return 0, ErrZeroImageWidth
		}
		if bit {
			acc |= 1 << uint(length-1)
		}
		if m, ok := idx.byLength[length]; ok {
			if run, ok := m[acc]; ok {
				return run, nil
			}
		}
	}
	return 0, ErrZeroImageWidth
}

// decode1DRow decodes one modified-Huffman row into a packed-bit buffer
// of the given width, alternating white/black runs starting white.
func decode1DRow(r *bitReader, width int) ([]byte, error) {
	row := make([]byte, (width+7)/8)
	pos := 0
	black := false
	for pos < width {
		idx := getWhiteIndex()
		if black {
			idx = getBlackIndex()
		}
		run, err := decodeRun(r, idx)
		if err != nil {
			return nil, err
		}
		if black {
			for x := pos; x < pos+run && x < width; x++ {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
		pos += run
		black = !black
	}
	return row, nil
}

// decode2DMode reads one 2D mode code and returns its index into
// t4ModeCodes (0..6 are vertical variants VR3..VL3, 7 horizontal,
// 8 pass).
func decode2DMode(r *bitReader) (int, error) {
	var acc uint16
	for length := 1; length <= 7; length++ {
		bit, ok := r.readBit()
		if !ok {
			return 0, ErrZeroImageWidth
		}
		if bit {
			acc |= 1 << uint(length-1)
		}
		for i, c := range t4ModeCodes {
			if c.length == length && c.code == acc {
				return i, nil
			}
		}
	}
	return 0, ErrZeroImageWidth
}

// decode2DRow decodes one modified-READ row against refRow (the
// previously decoded row, or all-white for the page's first row).
func decode2DRow(r *bitReader, refRow []byte, width int) ([]byte, error) {
	refRuns := runPositions(runLengths(refRow, width))
	pad := func(p []int) []int {
		last := p[len(p)-1]
		return append(p, last, last, last)
	}
	refRuns = pad(refRuns)

	row := make([]byte, (width+7)/8)
	setBlack := func(from, to int) {
		for x := from; x < to && x < width; x++ {
			row[x/8] |= 0x80 >> uint(x%8)
		}
	}

	a0 := 0
	color := false // current colour starting at a0, false = white
	bCursor := 0

	for a0 < width {
		for bCursor > 0 && refRuns[bCursor-1] > a0 {
			bCursor--
		}
		for bCursor < len(refRuns)-1 && (refRuns[bCursor] <= a0 || (bCursor%2 == 0) == color) {
			bCursor++
		}
		b1 := refRuns[bCursor]
		b2 := refRuns[bCursor+1]

		mode, err := decode2DMode(r)
		if err != nil {
			return nil, err
		}

		switch {
		case mode == t4ModePass:
			if color {
				setBlack(a0, b2)
			}
			a0 = b2
		case mode == t4ModeHorizontal:
			idx1, idx2 := getWhiteIndex(), getBlackIndex()
			if color {
				idx1, idx2 = idx2, idx1
			}
			run1, err := decodeRun(r, idx1)
			if err != nil {
				return nil, err
			}
			run2, err := decodeRun(r, idx2)
			if err != nil {
				return nil, err
			}
			a1 := a0 + run1
			a2 := a1 + run2
			if color {
				setBlack(a0, a1)
			} else {
				setBlack(a1, a2)
			}
			a0 = a2
		default:
			diff := mode - 3
			a1 := b1 + diff
			if color {
				setBlack(a0, a1)
			}
			a0 = a1
			color = !color
		}
	}
	return row, nil
}
