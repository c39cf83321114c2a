// Package setup queries the Visual Studio setup configuration for installed
// instances.
package setup

import (
	"context"

	"github.com/kvesta/vsdetect/pkg/packages"
)

// Instance is one installed Visual Studio instance.
type Instance struct {
	ID          string
	Name        string
	DisplayName string
	Path        string
	Version     string

	// Extended is nil when the instance does not expose ISetupInstance2.
	Extended *Extended
}

// Extended holds the data only the richer instance interface exposes.
type Extended struct {
	State State
	// Properties is nil when the instance has no property store.
	Properties  map[string]string
	Product     *packages.Package
	ProductPath string
	EnginePath  string
	Packages    []*packages.Package
}

// Enumerator opens a query over the installed instances.
type Enumerator interface {
	Open(ctx context.Context) (Instances, error)
}

// Instances iterates the result of one query. Close must be called once the
// caller is done, whether or not iteration completed.
type Instances interface {
	// Next returns nil, nil once every instance has been returned.
	Next() (*Instance, error)
	Close() error
}
