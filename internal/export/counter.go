package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Counter is the persisted save counter.
type Counter struct {
	path string
	mu   sync.Mutex
}

// NewCounter returns a counter stored at path. The file is created on the
// first Save.
func NewCounter(path string) *Counter {
	return &Counter{path: path}
}

// Path returns the backing file.
func (c *Counter) Path() string {
	return c.path
}

// Current returns the stored value. A missing or unreadable file counts as 0.
func (c *Counter) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Next returns the number the next save will record.
func (c *Counter) Next() int {
	return c.Current() + 1
}

// Save stores n.
func (c *Counter) Save(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(n)
}

// Reset stores 0.
func (c *Counter) Reset() error {
	return c.Save(0)
}

// Advance records one more save and returns the new value.
func (c *Counter) Advance() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.load() + 1
	if err := c.store(n); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Counter) load() int {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// store writes through a temp file so a crash never leaves a torn value.
func (c *Counter) store(n int) error {
	if n < 0 {
		return errors.New("counter: negative value")
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("counter: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".counter-*")
	if err != nil {
		return fmt.Errorf("counter: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(n)); err != nil {
		tmp.Close()
		return fmt.Errorf("counter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("counter: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("counter: %w", err)
	}
	return nil
}
