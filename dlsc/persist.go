package dlsc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/lumenforge/lux/bvh"
	"github.com/lumenforge/lux/light"
	"github.com/lumenforge/lux/math3"
)

// dlscMagic and dlscVersion tag the persistent cache format of spec.md
// §4.7: "a version-tagged binary of {params, entries, bvh}. File version
// is fixed and checked on load."
const (
	dlscMagic   uint32 = 0x4c58_444c // "LXDL"
	dlscVersion uint32 = 1
)

// Serialize writes the cache's params and entries (the BVH is rebuilt on
// load rather than serialized — see DESIGN.md) to w.
func (c *Cache) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, []uint32{dlscMagic, dlscVersion}); err != nil {
		return err
	}
	pf := []float32{c.params.LookUpRadius, c.params.LookUpNormalAngle, c.params.TargetHitRate, c.params.EntryConvergenceThreshold}
	if err := binary.Write(bw, binary.LittleEndian, pf); err != nil {
		return err
	}
	pi := []int32{int32(c.params.MaxPathDepth), int32(c.params.EntryMaxPasses), int32(c.params.EntryWarmUpSamples), int32(c.params.Workers)}
	if err := binary.Write(bw, binary.LittleEndian, pi); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(c.entries))); err != nil {
		return err
	}
	for _, it := range c.entries {
		e := it.entry
		if err := writeEntry(bw, e); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeEntry(w io.Writer, e Entry) error {
	vol := uint8(0)
	if e.IsVolume {
		vol = 1
	}
	pt := []float32{e.Point.X, e.Point.Y, e.Point.Z, e.Normal.X, e.Normal.Y, e.Normal.Z}
	if err := binary.Write(w, binary.LittleEndian, pt); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, vol); err != nil {
		return err
	}

	keys := e.Keys
	if err := binary.Write(w, binary.LittleEndian, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(k))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, k); err != nil {
			return err
		}
	}

	weights := e.Dist.FuncVals()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(weights))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, weights)
}

// Deserialize reads a cache previously written by Serialize, rebuilding
// the entry BVH from the restored entries.
func Deserialize(r io.Reader) (*Cache, error) {
	var hdr [2]uint32
	if err := binary.Read(r, binary.LittleEndian, hdr[:]); err != nil {
		return nil, fmt.Errorf("dlsc: deserialize header: %w", err)
	}
	if hdr[0] != dlscMagic {
		return nil, fmt.Errorf("dlsc: bad magic %#x", hdr[0])
	}
	if hdr[1] != dlscVersion {
		return nil, fmt.Errorf("dlsc: unsupported version %d", hdr[1])
	}

	var pf [4]float32
	if err := binary.Read(r, binary.LittleEndian, pf[:]); err != nil {
		return nil, fmt.Errorf("dlsc: deserialize params: %w", err)
	}
	var pi [4]int32
	if err := binary.Read(r, binary.LittleEndian, pi[:]); err != nil {
		return nil, fmt.Errorf("dlsc: deserialize params: %w", err)
	}
	params := Params{
		LookUpRadius:              pf[0],
		LookUpNormalAngle:         pf[1],
		TargetHitRate:             pf[2],
		EntryConvergenceThreshold: pf[3],
		MaxPathDepth:              int(pi[0]),
		EntryMaxPasses:            int(pi[1]),
		EntryWarmUpSamples:        int(pi[2]),
		Workers:                   int(pi[3]),
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("dlsc: deserialize entry count: %w", err)
	}
	items := make([]entryItem, count)
	for i := range items {
		e, err := readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("dlsc: deserialize entry %d: %w", i, err)
		}
		items[i] = entryItem{entry: e, bbox: math3.BBoxFromPoint(e.Point)}
	}

	return &Cache{params: params, entries: items, accel: bvh.Build(items)}, nil
}

func readEntry(r io.Reader) (Entry, error) {
	var pt [6]float32
	if err := binary.Read(r, binary.LittleEndian, pt[:]); err != nil {
		return Entry{}, err
	}
	var vol uint8
	if err := binary.Read(r, binary.LittleEndian, &vol); err != nil {
		return Entry{}, err
	}

	var keyCount uint32
	if err := binary.Read(r, binary.LittleEndian, &keyCount); err != nil {
		return Entry{}, err
	}
	keys := make([]string, keyCount)
	for i := range keys {
		var strLen uint32
		if err := binary.Read(r, binary.LittleEndian, &strLen); err != nil {
			return Entry{}, err
		}
		buf := make([]byte, strLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Entry{}, err
		}
		keys[i] = string(buf)
	}

	var weightCount uint32
	if err := binary.Read(r, binary.LittleEndian, &weightCount); err != nil {
		return Entry{}, err
	}
	weights := make([]float32, weightCount)
	if err := binary.Read(r, binary.LittleEndian, weights); err != nil {
		return Entry{}, err
	}

	return Entry{
		Point:    math3.P3(pt[0], pt[1], pt[2]),
		Normal:   math3.N3(pt[3], pt[4], pt[5]),
		IsVolume: vol != 0,
		Dist:     light.NewDistribution1D(weights),
		Keys:     keys,
	}, nil
}

// SaveFile safe-saves the cache to name: write to a temp file, then
// rename, per spec.md §4.7's "optional atomic safe save".
func (c *Cache) SaveFile(name string) error {
	tmp := name + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := c.Serialize(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, name)
}

// LoadFile loads a cache previously written by SaveFile/Serialize.
func LoadFile(name string) (*Cache, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Deserialize(f)
}
