package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvesta/vsdetect/pkg/packages"
	"github.com/kvesta/vsdetect/pkg/setup"
)

type fakeEnumerator struct {
	openErr   error
	instances []*setup.Instance
	// failAt makes Next fail once that many instances were returned.
	failAt   int
	panicAt  int
	closeErr error

	closed int
}

func (f *fakeEnumerator) Open(ctx context.Context) (setup.Instances, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeInstances{f: f}, nil
}

type fakeInstances struct {
	f    *fakeEnumerator
	next int
}

func (i *fakeInstances) Next() (*setup.Instance, error) {
	if i.f.failAt > 0 && i.next == i.f.failAt {
		return nil, errors.New("enumeration failed")
	}
	if i.f.panicAt > 0 && i.next == i.f.panicAt {
		panic("invalid pointer")
	}
	if i.next >= len(i.f.instances) {
		return nil, nil
	}
	inst := i.f.instances[i.next]
	i.next++
	return inst, nil
}

func (i *fakeInstances) Close() error {
	i.f.closed++
	return i.f.closeErr
}

type fakeFinder struct {
	byVersion map[string][]*packages.Package
	calls     []string
}

func (f *fakeFinder) Discover(vsVersion string) []*packages.Package {
	f.calls = append(f.calls, vsVersion)
	return f.byVersion[vsVersion]
}

func instances() []*setup.Instance {
	return []*setup.Instance{
		{ID: "first", Name: "VisualStudio/17.4.1", Version: "17.4.33103.184"},
		{ID: "second", Name: "VisualStudio/16.11.5", Version: "16.11.31727.386"},
	}
}

func TestScannerRun(t *testing.T) {
	enum := &fakeEnumerator{instances: instances()}
	finder := &fakeFinder{byVersion: map[string][]*packages.Package{
		"17.4.33103.184": {{ID: "abc", IsExtension: true}},
	}}
	var out bytes.Buffer

	s := &Scanner{Enumerator: enum, Finder: finder, Out: &out}
	code := s.Run(context.Background())

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, enum.closed)
	assert.Equal(t, []string{"17.4.33103.184", "16.11.31727.386"}, finder.calls)

	got := out.String()
	assert.Contains(t, got, "Id: first\n")
	assert.Contains(t, got, "Id: second\n")
	assert.Contains(t, got, `Extension: {"Id":"abc"`)
	assert.NotContains(t, got, "Unhandled exception")
	assert.Equal(t, 2, strings.Count(got, "\n\n"))
}

func TestScannerRunNoInstances(t *testing.T) {
	enum := &fakeEnumerator{}
	var out bytes.Buffer

	s := &Scanner{Enumerator: enum, Finder: &fakeFinder{}, Out: &out}
	assert.Equal(t, 0, s.Run(context.Background()))
	assert.Empty(t, out.String())
	assert.Equal(t, 1, enum.closed)
}

func TestScannerRunFailures(t *testing.T) {
	tests := []struct {
		name       string
		enum       *fakeEnumerator
		wantOutput []string
		wantError  string
		wantClosed int
	}{
		{
			name:       "open fails",
			enum:       &fakeEnumerator{openErr: errors.New("class not registered")},
			wantError:  "Unhandled exception: class not registered\n",
			wantClosed: 0,
		},
		{
			name:       "fails mid iteration",
			enum:       &fakeEnumerator{instances: instances(), failAt: 1},
			wantOutput: []string{"Id: first\n"},
			wantError:  "Unhandled exception: enumeration failed\n",
			wantClosed: 1,
		},
		{
			name:       "panics mid iteration",
			enum:       &fakeEnumerator{instances: instances(), panicAt: 1},
			wantOutput: []string{"Id: first\n"},
			wantError:  "Unhandled exception: invalid pointer\n",
			wantClosed: 1,
		},
		{
			name:       "close fails",
			enum:       &fakeEnumerator{instances: instances(), closeErr: errors.New("release failed")},
			wantOutput: []string{"Id: first\n", "Id: second\n"},
			wantError:  "Unhandled exception: release failed\n",
			wantClosed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := &Scanner{Enumerator: tt.enum, Finder: &fakeFinder{}, Out: &out}

			code := s.Run(context.Background())
			require.Equal(t, 1, code)

			got := out.String()
			for _, w := range tt.wantOutput {
				assert.Contains(t, got, w)
			}
			assert.True(t, strings.HasSuffix(got, tt.wantError), "output %q", got)
			assert.Equal(t, 1, strings.Count(got, "Unhandled exception"))
			assert.Equal(t, tt.wantClosed, tt.enum.closed)
		})
	}
}
