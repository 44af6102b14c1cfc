package crawler

import (
	"github.com/BenjaminSRussell/gositemap/internal/types"
	"github.com/bits-and-blooms/bloom/v3"
)

// Bloom filter false positive rate for the visited set
const bloomFalsePositive = 0.01

// Frontier is the FIFO queue of tasks awaiting a visit. It belongs to a
// single crawl run and is not safe for concurrent use.
type Frontier struct {
	tasks []types.CrawlTask
	head  int
}

// NewFrontier creates an empty frontier
func NewFrontier() *Frontier {
	return &Frontier{
		tasks: make([]types.CrawlTask, 0, 64),
	}
}

// Push appends a task at the tail
func (f *Frontier) Push(task types.CrawlTask) {
	f.tasks = append(f.tasks, task)
}

// Pop removes and returns the head task
func (f *Frontier) Pop() (types.CrawlTask, bool) {
	if f.head >= len(f.tasks) {
		return types.CrawlTask{}, false
	}

	task := f.tasks[f.head]
	f.tasks[f.head] = types.CrawlTask{}
	f.head++

	// reclaim the consumed prefix once it dominates the slice
	if f.head > 64 && f.head*2 > len(f.tasks) {
		n := copy(f.tasks, f.tasks[f.head:])
		f.tasks = f.tasks[:n]
		f.head = 0
	}

	return task, true
}

// Len returns the number of pending tasks
func (f *Frontier) Len() int {
	return len(f.tasks) - f.head
}

// IsEmpty checks if the frontier has no more tasks
func (f *Frontier) IsEmpty() bool {
	return f.Len() == 0
}

// VisitedSet records admitted URLs in visitation order. A bloom filter
// answers most negative lookups before the map is consulted.
type VisitedSet struct {
	seen  map[string]struct{}
	order []string
	bloom *bloom.BloomFilter
}

// NewVisitedSet sizes the set for the expected number of URLs
func NewVisitedSet(expected int) *VisitedSet {
	if expected < 1 {
		expected = 1
	}
	return &VisitedSet{
		seen:  make(map[string]struct{}, expected),
		order: make([]string, 0, min(expected, 1024)),
		bloom: bloom.NewWithEstimates(uint(expected), bloomFalsePositive),
	}
}

// Add inserts url and reports whether it was new
func (v *VisitedSet) Add(url string) bool {
	if v.Contains(url) {
		return false
	}
	v.seen[url] = struct{}{}
	v.order = append(v.order, url)
	v.bloom.AddString(url)
	return true
}

// Contains reports whether url was already visited
func (v *VisitedSet) Contains(url string) bool {
	if !v.bloom.TestString(url) {
		return false
	}
	_, ok := v.seen[url]
	return ok
}

// Len returns the number of visited URLs
func (v *VisitedSet) Len() int {
	return len(v.order)
}

// URLs returns a copy of the visited URLs in visitation order
func (v *VisitedSet) URLs() []string {
	urls := make([]string, len(v.order))
	copy(urls, v.order)
	return urls
}
