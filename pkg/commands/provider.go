package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoProvider is returned by Execute when a command was built without
// a data provider.
var ErrNoProvider = errors.New("commands: no data provider")

// DataProvider is an asynchronous source of command parameters.
// FetchData may block; it must return when ctx is done.
type DataProvider[T any] interface {
	FetchData(ctx context.Context) (T, error)
}

// StaticProvider returns a fixed value immediately.
type StaticProvider[T any] struct {
	Value T
}

// FetchData returns p.Value.
func (p StaticProvider[T]) FetchData(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return p.Value, nil
}

// DelayedProvider simulates a slow fetch: it waits Delay, then returns
// Value (or Err, when set).
type DelayedProvider[T any] struct {
	Value T
	Delay time.Duration
	Err   error
}

// FetchData waits for the configured delay or for ctx to be done.
func (p DelayedProvider[T]) FetchData(ctx context.Context) (T, error) {
	var zero T
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	if p.Err != nil {
		return zero, p.Err
	}
	return p.Value, nil
}

// WithDelay wraps p so every fetch first waits d (or until ctx is done).
func WithDelay[T any](p DataProvider[T], d time.Duration) DataProvider[T] {
	return FuncProvider[T](func(ctx context.Context) (T, error) {
		var zero T
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		return p.FetchData(ctx)
	})
}

// FuncProvider adapts a function to DataProvider.
type FuncProvider[T any] func(ctx context.Context) (T, error)

// FetchData calls f.
func (f FuncProvider[T]) FetchData(ctx context.Context) (T, error) {
	return f(ctx)
}

// YAMLFileProvider reads attributes from a YAML document.
// Fields missing from the file keep the values in Defaults.
// Path is resolved against FS when set, otherwise against the working directory.
type YAMLFileProvider[T any] struct {
	Path     string
	Defaults T
	FS       fs.FS
}

// FetchData reads and decodes the file at p.Path.
func (p YAMLFileProvider[T]) FetchData(ctx context.Context) (T, error) {
	result := p.Defaults
	if err := ctx.Err(); err != nil {
		return result, err
	}

	var data []byte
	var err error
	if p.FS != nil {
		data, err = fs.ReadFile(p.FS, p.Path)
	} else {
		data, err = os.ReadFile(p.Path)
	}
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", p.Path, err)
	}
	if err := yaml.Unmarshal(data, &result); err != nil {
		return p.Defaults, fmt.Errorf("failed to parse %s: %w", p.Path, err)
	}
	return result, nil
}
