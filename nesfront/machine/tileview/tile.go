package tileview

import "github.com/valerio/go-nesfront/nesfront/bit"

// TileBytes is the size of one pattern table tile in CHR memory.
const TileBytes = 16

// TileRow represents one row of a tile pattern (8 pixels).
//
// NES tiles store their two bit planes back to back: bytes 0-7 hold plane 0
// for rows 0-7 and bytes 8-15 hold plane 1. Bit 7 is the leftmost pixel.
//
//	Low  (0x41): 0 1 0 0 0 0 0 1
//	High (0x03): 0 0 0 0 0 0 1 1
//	            -----------------
//	Colors:      0 1 0 0 0 0 2 3
type TileRow struct {
	Low  byte
	High byte
}

// Pixel extracts a 2-bit color (0-3) from the row; x=0 is the leftmost pixel.
func (r TileRow) Pixel(x int) uint8 {
	return bit.Pair(uint8(7-x), r.Low, r.High)
}

// Tile is a decoded 8x8 pattern.
type Tile struct {
	Rows [8]TileRow
}

// Pixel returns the color index at (x, y); out of range coordinates yield 0.
func (t *Tile) Pixel(x, y int) uint8 {
	if x < 0 || x >= 8 || y < 0 || y >= 8 {
		return 0
	}
	return t.Rows[y].Pixel(x)
}

// DecodeTiles splits CHR memory into tiles. A trailing partial tile is ignored.
func DecodeTiles(chr []byte) []Tile {
	tiles := make([]Tile, len(chr)/TileBytes)
	for i := range tiles {
		base := i * TileBytes
		for row := 0; row < 8; row++ {
			tiles[i].Rows[row] = TileRow{
				Low:  chr[base+row],
				High: chr[base+row+8],
			}
		}
	}
	return tiles
}
