//go:build !windows

package setup

import (
	"context"
	"errors"
)

type dummyEnumerator struct{}

// NewEnumerator returns an enumerator that always fails outside Windows.
func NewEnumerator() Enumerator {
	return dummyEnumerator{}
}

func (dummyEnumerator) Open(ctx context.Context) (Instances, error) {
	return nil, errors.New("setup configuration is only supported on Windows")
}
