package fs

import (
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	OpenFailRate    float64 // OpenFile fails (lock acquisition)
	ReadFailRate    float64 // ReadFile fails entirely
	PartialReadRate float64 // ReadFile returns a truncated prefix
	WriteFailRate   float64 // WriteFileAtomic fails, destination untouched
	ReplaceFailRate float64 // ReplaceFile fails, both files untouched
	StatFailRate    float64 // Stat/Exists fail
	ReadDirFailRate float64 // ReadDir fails
	RemoveFailRate  float64 // Remove fails
}

// DefaultChaosConfig returns a config with rates high enough that a handful
// of patch runs hit every fault kind.
func DefaultChaosConfig() ChaosConfig {
	return ChaosConfig{
		OpenFailRate:    0.05,
		ReadFailRate:    0.05,
		PartialReadRate: 0.05,
		WriteFailRate:   0.1,
		ReplaceFailRate: 0.1,
		StatFailRate:    0.02,
		ReadDirFailRate: 0.05,
		RemoveFailRate:  0.05,
	}
}

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModePassthrough behaves like the underlying FS.
	ChaosModePassthrough ChaosMode = iota

	// ChaosModeInject enables fault-rate injection.
	ChaosModeInject
)

// Chaos wraps an [FS] and injects random failures for testing.
//
// Injected failures never modify the underlying filesystem: a failed
// WriteFileAtomic or ReplaceFile leaves every file as it was, which is what
// the atomic [Real] implementation guarantees. Partial reads only affect
// what the caller sees.
//
// All injected errors are *os.PathError values carrying a syscall.Errno,
// wrapped in [InjectedError].
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32

	mu  sync.Mutex
	rng *rand.Rand

	faults atomic.Int64
}

// NewChaos creates a new Chaos filesystem wrapping fs. The seed makes fault
// sequences reproducible. A new Chaos starts in [ChaosModeInject].
func NewChaos(fs FS, seed uint64, config ChaosConfig) *Chaos {
	c := &Chaos{
		fs:     fs,
		config: config,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	c.mode.Store(uint32(ChaosModeInject))

	return c
}

// SetMode updates Chaos behavior. Safe for concurrent use.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// TotalFaults returns how many faults have been injected so far.
func (c *Chaos) TotalFaults() int64 { return c.faults.Load() }

func (c *Chaos) should(rate float64) bool {
	if ChaosMode(c.mode.Load()) != ChaosModeInject || rate <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Float64() < rate
}

func (c *Chaos) intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.IntN(n)
}

func (c *Chaos) fail(op, path string, errno syscall.Errno) error {
	c.faults.Add(1)

	return &InjectedError{Err: &os.PathError{Op: op, Path: path, Err: errno}}
}

// OpenFile implements [FS].
func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if c.should(c.config.OpenFailRate) {
		return nil, c.fail("open", path, syscall.EMFILE)
	}

	return c.fs.OpenFile(path, flag, perm)
}

// ReadFile implements [FS].
func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.should(c.config.ReadFailRate) {
		return nil, c.fail("read", path, syscall.EIO)
	}

	data, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(data) > 1 && c.should(c.config.PartialReadRate) {
		c.faults.Add(1)

		return data[:c.intn(len(data))], nil
	}

	return data, nil
}

// WriteFileAtomic implements [FS].
func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if c.should(c.config.WriteFailRate) {
		return c.fail("write", path, syscall.ENOSPC)
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

// ReplaceFile implements [FS].
func (c *Chaos) ReplaceFile(source, destination string) error {
	if c.should(c.config.ReplaceFailRate) {
		return c.fail("rename", destination, syscall.EXDEV)
	}

	return c.fs.ReplaceFile(source, destination)
}

// ReadDir implements [FS].
func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	if c.should(c.config.ReadDirFailRate) {
		return nil, c.fail("readdirent", path, syscall.EIO)
	}

	return c.fs.ReadDir(path)
}

// Stat implements [FS].
func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if c.should(c.config.StatFailRate) {
		return nil, c.fail("stat", path, syscall.EACCES)
	}

	return c.fs.Stat(path)
}

// Exists implements [FS].
func (c *Chaos) Exists(path string) (bool, error) {
	if c.should(c.config.StatFailRate) {
		return false, c.fail("stat", path, syscall.EACCES)
	}

	return c.fs.Exists(path)
}

// Remove implements [FS].
func (c *Chaos) Remove(path string) error {
	if c.should(c.config.RemoveFailRate) {
		return c.fail("remove", path, syscall.EBUSY)
	}

	return c.fs.Remove(path)
}

var _ FS = (*Chaos)(nil)
