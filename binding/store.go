package binding

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// file is the saved form of a grid. Samples holds the slot buffer in the same
// row-major order as Grid, so dims must multiply to len(Samples).
type file struct {
	Descriptor Descriptor `json:"descriptor"`
	Dims       [3]int     `json:"dims"`
	Samples    []Slot     `json:"samples"`
}

// Save writes g as JSON.
func (g *Grid) Save(w io.Writer) error {
	f := file{
		Descriptor: g.desc,
		Dims:       g.dims,
		Samples:    g.slots,
	}
	if f.Samples == nil {
		f.Samples = []Slot{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(&f), "encode binding")
}

// Load reads a grid written by Save.
func Load(r io.Reader) (*Grid, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode binding")
	}
	for _, n := range f.Dims {
		if n < 0 {
			return nil, errors.Errorf("negative binding dimension: %v", f.Dims)
		}
	}
	if want, got := f.Dims[0]*f.Dims[1]*f.Dims[2], len(f.Samples); want != got {
		return nil, errors.Errorf("binding has %d samples, dimensions %v need %d", got, f.Dims, want)
	}
	d := f.Descriptor
	if want := [3]int{d.NoteBuckets(), d.VelocityBuckets, d.RoundRobins}; len(f.Samples) > 0 && want != f.Dims {
		return nil, errors.Errorf("binding dimensions %v do not match descriptor %v", f.Dims, want)
	}
	g := &Grid{desc: d}
	if len(f.Samples) > 0 {
		g.dims = f.Dims
		g.slots = f.Samples
	}
	g.buildTables()
	return g, nil
}

// SaveFile writes g to path.
func (g *Grid) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a grid from path.
func LoadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return g, nil
}
