package lib

import (
	"fmt"
	"time"
)

// Pointers are stored in a single byte, so no address may exceed this.
const maxCapacity = 255

type Config struct {
	Rows        int
	BytesPerRow int

	// Seed feeds the placeholder values of uninitialized declarations. Zero
	// means seed from the clock.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		Rows:        10,
		BytesPerRow: 4,
	}
}

func (c Config) Capacity() int {
	return c.Rows * c.BytesPerRow
}

func (c Config) Validate() error {
	if c.Rows <= 0 {
		return fmt.Errorf("Rows must be positive, got %d", c.Rows)
	}
	if c.BytesPerRow <= 0 {
		return fmt.Errorf("BytesPerRow must be positive, got %d", c.BytesPerRow)
	}
	if c.Capacity() > maxCapacity {
		return fmt.Errorf(
			"Capacity %d (%d rows x %d bytes) exceeds the %d addresses a pointer can hold",
			c.Capacity(), c.Rows, c.BytesPerRow, maxCapacity)
	}
	return nil
}

func (c Config) seed() int64 {
	if c.Seed == 0 {
		return time.Now().UnixNano()
	}
	return c.Seed
}
