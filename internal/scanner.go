package internal

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/kvesta/vsdetect/config"
	"github.com/kvesta/vsdetect/internal/report"
	"github.com/kvesta/vsdetect/pkg/packages"
	"github.com/kvesta/vsdetect/pkg/setup"
)

// ExtensionFinder returns the user extensions installed for a Visual Studio
// version.
type ExtensionFinder interface {
	Discover(vsVersion string) []*packages.Package
}

// Scanner enumerates the installed instances and reports each one together
// with its user extensions.
type Scanner struct {
	Enumerator setup.Enumerator
	Finder     ExtensionFinder
	Out        io.Writer
}

// Run reports every instance and returns the process exit status. Failures
// are reported once on Out; lines already written are kept.
func (s *Scanner) Run(ctx context.Context) (code int) {
	defer func() {
		if r := recover(); r != nil {
			s.unhandled(fmt.Errorf("%v", r))
			code = 1
		}
	}()

	if err := s.scan(ctx); err != nil {
		s.unhandled(err)
		return 1
	}

	return 0
}

func (s *Scanner) unhandled(err error) {
	config.Logger.Debug("Enumeration aborted", "err", err)
	fmt.Fprintf(s.Out, "Unhandled exception: %v\n", err)
}

func (s *Scanner) scan(ctx context.Context) (err error) {
	instances, err := s.Enumerator.Open(ctx)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(instances))

	for {
		inst, err := instances.Next()
		if err != nil {
			return err
		}
		if inst == nil {
			return nil
		}

		config.Logger.Debug("Found instance", "id", inst.ID, "version", inst.Version)

		exts := s.Finder.Discover(inst.Version)
		if err := report.Write(s.Out, inst, exts); err != nil {
			return err
		}
	}
}
