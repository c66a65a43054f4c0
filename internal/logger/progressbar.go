package logger

import (
	"fmt"
	"strings"
	"sync"
)

// ProgressBar renders batch progress as a fixed-width ASCII bar. Safe for
// concurrent updates.
type ProgressBar struct {
	mu          sync.Mutex
	current     int
	total       int
	width       int
	enableColor bool
	prefix      string
}

// NewProgressBar creates a bar for total units, width characters wide.
// Widths below one fall back to ten characters.
func NewProgressBar(total, width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 10
	}
	return &ProgressBar{total: total, width: width, enableColor: enableColor}
}

// Update sets the completed unit count.
func (pb *ProgressBar) Update(current int) {
	pb.mu.Lock()
	pb.current = current
	pb.mu.Unlock()
}

// Increment adds one completed unit.
func (pb *ProgressBar) Increment() {
	pb.mu.Lock()
	pb.current++
	pb.mu.Unlock()
}

// Current returns the completed unit count.
func (pb *ProgressBar) Current() int {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.current
}

// Total returns the total unit count.
func (pb *ProgressBar) Total() int {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.total
}

// Percentage returns completion as 0-100, clamped.
func (pb *ProgressBar) Percentage() int {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.percentageLocked()
}

// percentageLocked computes the clamped percentage. Callers hold the lock.
func (pb *ProgressBar) percentageLocked() int {
	if pb.total == 0 {
		return 0
	}
	perc := (pb.current * 100) / pb.total
	if perc > 100 {
		return 100
	}
	if perc < 0 {
		return 0
	}
	return perc
}

// SetPrefix puts a label in front of the rendered bar.
func (pb *ProgressBar) SetPrefix(prefix string) {
	pb.mu.Lock()
	pb.prefix = prefix
	pb.mu.Unlock()
}

// Render generates the ASCII progress bar string.
// Format: "[=====     ] 4/8 (50%)"
func (pb *ProgressBar) Render() string {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	perc := pb.percentageLocked()
	filled := (perc * pb.width) / 100
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", pb.width-filled) + "]"

	result := fmt.Sprintf("%s%s %d/%d (%d%%)", pb.prefix, bar, pb.current, pb.total, perc)

	if pb.enableColor && perc == 100 {
		result = fmt.Sprintf("\033[32m%s\033[0m", result) // Green for complete
	} else if pb.enableColor {
		result = fmt.Sprintf("\033[36m%s\033[0m", result) // Cyan for in-progress
	}

	return result
}
