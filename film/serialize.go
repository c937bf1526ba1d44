package film

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sort"
)

// filmMagic and filmVersion identify the custom binary format of spec.md
// §6: "Header: magic, version, width, height, subregion, channel bitmap,
// then per-channel {sum:f32, weight:f32} raster."
const (
	filmMagic   uint32 = 0x4c58_464d // "LXFM"
	filmVersion uint32 = 1
)

// Serialize writes f to w in the format spec.md §6 names for
// SERIALIZED_FILM / the .rsm resume file's film section.
func (f *Film) Serialize(w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	bw := bufio.NewWriter(w)
	hdr := []uint32{filmMagic, filmVersion, uint32(f.width), uint32(f.height)}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return err
	}
	sub := []int32{int32(f.subX0), int32(f.subY0), int32(f.subX1), int32(f.subY1)}
	if err := binary.Write(bw, binary.LittleEndian, sub); err != nil {
		return err
	}

	order := append([]Channel(nil), f.order...)
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var bitmap [(int(numChannels) + 63) / 64]uint64
	for _, ch := range order {
		bitmap[ch/64] |= 1 << uint(ch%64)
	}
	if err := binary.Write(bw, binary.LittleEndian, bitmap[:]); err != nil {
		return err
	}

	for _, ch := range order {
		b := f.channels[ch]
		if err := binary.Write(bw, binary.LittleEndian, b.sum); err != nil {
			return fmt.Errorf("film: serialize channel %s: %w", ch, err)
		}
		if b.weight != nil {
			if err := binary.Write(bw, binary.LittleEndian, b.weight); err != nil {
				return fmt.Errorf("film: serialize channel %s weight: %w", ch, err)
			}
		}
	}
	return bw.Flush()
}

// Deserialize reads a film previously written by Serialize. A version
// mismatch or bad magic is a resource error (spec.md §7's "decode
// failure"): fatal to the call, no partially-built film is returned.
func Deserialize(r io.Reader) (*Film, error) {
	var hdr [4]uint32
	if err := binary.Read(r, binary.LittleEndian, hdr[:]); err != nil {
		return nil, fmt.Errorf("film: deserialize header: %w", err)
	}
	if hdr[0] != filmMagic {
		return nil, fmt.Errorf("film: bad magic %#x", hdr[0])
	}
	if hdr[1] != filmVersion {
		return nil, fmt.Errorf("film: unsupported version %d", hdr[1])
	}
	width, height := int(hdr[2]), int(hdr[3])

	var sub [4]int32
	if err := binary.Read(r, binary.LittleEndian, sub[:]); err != nil {
		return nil, fmt.Errorf("film: deserialize subregion: %w", err)
	}

	var bitmap [(int(numChannels) + 63) / 64]uint64
	if err := binary.Read(r, binary.LittleEndian, bitmap[:]); err != nil {
		return nil, fmt.Errorf("film: deserialize channel bitmap: %w", err)
	}

	var channels []Channel
	for ch := Channel(0); ch < numChannels; ch++ {
		if bitmap[ch/64]&(1<<uint(ch%64)) != 0 {
			channels = append(channels, ch)
		}
	}

	f := &Film{
		width:    width,
		height:   height,
		subX0:    int(sub[0]),
		subY0:    int(sub[1]),
		subX1:    int(sub[2]),
		subY1:    int(sub[3]),
		channels: make(map[Channel]buffer),
	}
	f.pipeline.Store(DefaultPipeline())

	f.enable(RGB)
	for _, ch := range channels {
		if ch == RGB {
			continue
		}
		f.enable(ch)
	}

	for _, ch := range channels {
		b := f.channels[ch]
		if err := binary.Read(r, binary.LittleEndian, b.sum); err != nil {
			return nil, fmt.Errorf("film: deserialize channel %s: %w", ch, err)
		}
		if b.weight != nil {
			if err := binary.Read(r, binary.LittleEndian, b.weight); err != nil {
				return nil, fmt.Errorf("film: deserialize channel %s weight: %w", ch, err)
			}
		}
	}
	return f, nil
}

// SaveFilm safe-saves f's serialized form to name: write to a temp file in
// the same directory, then rename, so a crash mid-write never corrupts an
// existing save (spec.md §4.7 names this pattern for the DLSC cache; film
// resume files share the same requirement).
func (f *Film) SaveFilm(name string) error {
	tmp := name + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := f.Serialize(out); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, name)
}

// LoadFilm loads a film previously written by SaveFilm/Serialize.
func LoadFilm(name string) (*Film, error) {
	in, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return Deserialize(in)
}

// SaveOutput writes channel ch to name as an 8-bit PNG (runPipeline should
// be true for RGB/RGBA so the file is display-referred), spec.md §4.5's
// saveOutput. Non-color channels are written as a greyscale PNG of their
// first component, clamped to [0,1].
func (f *Film) SaveOutput(name string, ch Channel, runPipeline bool) error {
	vals, err := f.Output(ch, runPipeline)
	if err != nil {
		return err
	}
	n := ch.Components()
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			base := (y*f.width + x) * n
			var r, g, b, a float32
			switch {
			case n >= 4:
				r, g, b, a = vals[base], vals[base+1], vals[base+2], vals[base+3]
			case n == 3:
				r, g, b, a = vals[base], vals[base+1], vals[base+2], 1
			default:
				r = vals[base]
				g, b, a = r, r, 1
			}
			img.SetRGBA(x, y, toRGBA8(r, g, b, a))
		}
	}
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}

func toRGBA8(r, g, b, a float32) color.RGBA {
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: to8(a)}
}

func to8(v float32) uint8 {
	v = clampFloat(v, 0, 1)
	return uint8(v*255 + 0.5)
}
