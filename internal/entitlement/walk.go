package entitlement

import (
	"errors"
	"fmt"
)

// ErrCycle means the container tree is corrupted: following parent pointers revisited
// a container. It is an internal error, never a user facing answer.
var ErrCycle = errors.New("container hierarchy contains a cycle")

// ParentFunc returns the parent of a container, or nil at the root.
type ParentFunc func(containerID int64) (*int64, error)

// Covers walks from start towards the root and reports whether start or any of its
// ancestors is in purchased.
func Covers(start int64, parentOf ParentFunc, purchased map[int64]struct{}) (bool, error) {
	visited := make(map[int64]struct{})
	current := start
	for {
		if _, ok := visited[current]; ok {
			return false, fmt.Errorf("%w: container %d reached twice from %d", ErrCycle, current, start)
		}
		visited[current] = struct{}{}

		if _, ok := purchased[current]; ok {
			return true, nil
		}

		parent, err := parentOf(current)
		if err != nil {
			return false, err
		}
		if parent == nil {
			return false, nil
		}
		current = *parent
	}
}
