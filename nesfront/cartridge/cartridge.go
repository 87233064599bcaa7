package cartridge

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	headerSize  = 16
	trainerSize = 512

	// PRGBankSize is the size of one PRG ROM unit declared in the header.
	PRGBankSize = 16 * 1024
	// CHRBankSize is the size of one CHR ROM unit declared in the header.
	CHRBankSize = 8 * 1024
)

const (
	prgSizeOffset = 4
	chrSizeOffset = 5
	flags6Offset  = 6
	flags7Offset  = 7
)

var magic = []byte{'N', 'E', 'S', 0x1A}

var (
	ErrInvalidHeader = errors.New("invalid iNES header")
	ErrTruncated     = errors.New("cartridge image truncated")
)

// Mirroring is the nametable arrangement wired on the cartridge board.
type Mirroring int

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorFourScreen
)

func (m Mirroring) String() string {
	switch m {
	case MirrorVertical:
		return "vertical"
	case MirrorFourScreen:
		return "four-screen"
	default:
		return "horizontal"
	}
}

// Image is an immutable cartridge image split into its ROM sections. Only the
// header is interpreted here; mapper behaviour belongs to the machine core.
type Image struct {
	Name      string
	PRG       []byte
	CHR       []byte // empty when the board uses CHR RAM
	Mapper    uint8
	Mirroring Mirroring
	Battery   bool
	NES2      bool
}

// HasCHRRAM reports whether the board provides CHR RAM instead of ROM.
func (img *Image) HasCHRRAM() bool {
	return len(img.CHR) == 0
}

func (img *Image) String() string {
	return fmt.Sprintf("%s (mapper %d, PRG %dKB, CHR %dKB, %s)",
		img.Name, img.Mapper, len(img.PRG)/1024, len(img.CHR)/1024, img.Mirroring)
}

// Parse splits raw iNES data into an Image. The input slice is copied.
func Parse(data []byte) (*Image, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	if !bytes.Equal(data[:len(magic)], magic) {
		return nil, ErrInvalidHeader
	}

	flags6 := data[flags6Offset]
	flags7 := data[flags7Offset]

	prgSize := int(data[prgSizeOffset]) * PRGBankSize
	chrSize := int(data[chrSizeOffset]) * CHRBankSize
	if prgSize == 0 {
		return nil, fmt.Errorf("%w: no PRG ROM", ErrInvalidHeader)
	}

	offset := headerSize
	if flags6&0x04 != 0 {
		offset += trainerSize
	}

	if len(data) < offset+prgSize+chrSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, offset+prgSize+chrSize, len(data))
	}

	img := &Image{
		PRG:     make([]byte, prgSize),
		CHR:     make([]byte, chrSize),
		Mapper:  (flags7 & 0xF0) | (flags6 >> 4),
		Battery: flags6&0x02 != 0,
		NES2:    flags7&0x0C == 0x08,
	}

	switch {
	case flags6&0x08 != 0:
		img.Mirroring = MirrorFourScreen
	case flags6&0x01 != 0:
		img.Mirroring = MirrorVertical
	default:
		img.Mirroring = MirrorHorizontal
	}

	copy(img.PRG, data[offset:offset+prgSize])
	copy(img.CHR, data[offset+prgSize:offset+prgSize+chrSize])

	return img, nil
}

// LoadFile reads and parses the iNES file at path.
func LoadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}

	img, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ROM %s: %w", path, err)
	}
	img.Name = romName(path)

	slog.Info("Loaded ROM", "path", path, "bytes", len(data), "mapper", img.Mapper,
		"prg_kb", len(img.PRG)/1024, "chr_kb", len(img.CHR)/1024)

	return img, nil
}

func romName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
