package gtcheck

import (
	"fmt"
	"slices"
)

// Bucket names one of the four review lists.
type Bucket int

// Review lists.
const (
	BucketPending Bucket = iota
	BucketSkipped
	BucketFinished
	BucketRemoved
)

var bucketNames = [...]string{"pending", "skipped", "finished", "removed"}

func (b Bucket) String() string {
	if b < 0 || int(b) >= len(bucketNames) {
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
	return bucketNames[b]
}

// MarshalText implements encoding.TextMarshaler.
func (b Bucket) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(bucketNames) {
		return nil, fmt.Errorf("unknown bucket %d", int(b))
	}
	return []byte(bucketNames[b]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bucket) UnmarshalText(text []byte) error {
	i := slices.Index(bucketNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown bucket %q", text)
	}
	*b = Bucket(i)
	return nil
}

// UndoSlot captures the last destructive decision.
type UndoSlot struct {
	Path    string `json:"path"`
	Content string `json:"previous_content"`
	Existed bool   `json:"existed"` // false when the file was absent before the decision
	Source  Bucket `json:"source_list"`
	Action  Action `json:"action"`
	Kind    Kind   `json:"kind"`
}

// Queue partitions the files of one review into four ordered lists.
// Every path lives in exactly one list.
type Queue struct {
	Pending  []string  `json:"pending"`
	Skipped  []string  `json:"skipped"`
	Finished []string  `json:"finished"`
	Removed  []string  `json:"removed"`
	Undo     *UndoSlot `json:"undo,omitempty"`
}

// NewQueue returns a queue with paths pending.
func NewQueue(paths []string) Queue {
	return Queue{Pending: slices.Clone(paths)}
}

func (q *Queue) list(b Bucket) *[]string {
	switch b {
	case BucketPending:
		return &q.Pending
	case BucketSkipped:
		return &q.Skipped
	case BucketFinished:
		return &q.Finished
	case BucketRemoved:
		return &q.Removed
	}
	panic(fmt.Sprintf("gtcheck: unknown bucket %d", int(b)))
}

// Len returns the number of files across all lists.
func (q *Queue) Len() int {
	return len(q.Pending) + len(q.Skipped) + len(q.Finished) + len(q.Removed)
}

// Empty reports whether no list holds a file.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// Current returns the head of the pending list.
func (q *Queue) Current() (string, bool) {
	if len(q.Pending) == 0 {
		return "", false
	}
	return q.Pending[0], true
}

// Locate returns the list holding path.
func (q *Queue) Locate(path string) (Bucket, bool) {
	for b := BucketPending; b <= BucketRemoved; b++ {
		if slices.Contains(*q.list(b), path) {
			return b, true
		}
	}
	return 0, false
}

func (q *Queue) take(path string, from Bucket) error {
	l := q.list(from)
	i := slices.Index(*l, path)
	if i < 0 {
		return fmt.Errorf("%s not in %s: %w", path, from, ErrNotInBucket)
	}
	*l = slices.Delete(*l, i, i+1)
	return nil
}

// Move appends path to the end of to after removing it from from.
func (q *Queue) Move(path string, from, to Bucket) error {
	if err := q.take(path, from); err != nil {
		return err
	}
	l := q.list(to)
	*l = append(*l, path)
	return nil
}

// Restore moves path from the given list to the front of pending.
func (q *Queue) Restore(path string, from Bucket) error {
	if err := q.take(path, from); err != nil {
		return err
	}
	q.Pending = slices.Insert(q.Pending, 0, path)
	return nil
}

// Requeue moves every file of from to the front of pending, keeping order.
func (q *Queue) Requeue(from Bucket) int {
	if from == BucketPending {
		return 0
	}
	l := q.list(from)
	n := len(*l)
	q.Pending = append(slices.Clone(*l), q.Pending...)
	*l = nil
	return n
}

// Validate checks that no path appears twice.
func (q *Queue) Validate() error {
	seen := make(map[string]Bucket, q.Len())
	for b := BucketPending; b <= BucketRemoved; b++ {
		for _, path := range *q.list(b) {
			if prev, ok := seen[path]; ok {
				return fmt.Errorf("%s is in both %s and %s", path, prev, b)
			}
			seen[path] = b
		}
	}
	return nil
}
