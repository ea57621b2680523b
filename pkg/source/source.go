// Package source collects the code a user wants analyzed.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ConfigMapReader is satisfied by *KubeClient.
type ConfigMapReader interface {
	ConfigMapCode(ctx context.Context, namespace, ref string) (string, error)
}

type Options struct {
	Code      string
	Path      string // "-" reads stdin
	Example   bool
	ConfigMap string
	Namespace string
}

// Input is the collected code and a short description of where it came from.
type Input struct {
	Code   string
	Origin string
}

var ErrNoInput = errors.New("no code given: pass a file, '-' for stdin, --code, --example or --configmap")

type Resolver struct {
	Stdin io.Reader
	// Kube is called only when a ConfigMap source is requested.
	Kube func() (ConfigMapReader, error)
}

// Resolve returns the code selected by opts. Exactly one source may be set.
func (r *Resolver) Resolve(ctx context.Context, opts Options) (*Input, error) {
	set := 0
	for _, on := range []bool{opts.Code != "", opts.Path != "", opts.Example, opts.ConfigMap != ""} {
		if on {
			set++
		}
	}
	switch {
	case set == 0:
		return nil, ErrNoInput
	case set > 1:
		return nil, fmt.Errorf("choose only one of FILE, --code, --example or --configmap")
	}

	switch {
	case opts.Code != "":
		return &Input{Code: opts.Code, Origin: "--code"}, nil

	case opts.Example:
		return &Input{Code: Example(), Origin: "built-in example"}, nil

	case opts.Path == "-":
		if r.Stdin == nil {
			return nil, fmt.Errorf("stdin is not available")
		}
		data, err := io.ReadAll(r.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &Input{Code: string(data), Origin: "stdin"}, nil

	case opts.Path != "":
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", opts.Path, err)
		}
		return &Input{Code: string(data), Origin: opts.Path}, nil

	default:
		if r.Kube == nil {
			return nil, fmt.Errorf("kubernetes access is not configured")
		}
		kube, err := r.Kube()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to cluster: %w", err)
		}
		namespace := opts.Namespace
		if namespace == "" {
			namespace = "default"
		}
		code, err := kube.ConfigMapCode(ctx, namespace, opts.ConfigMap)
		if err != nil {
			return nil, err
		}
		return &Input{Code: code, Origin: fmt.Sprintf("configmap %s/%s", namespace, opts.ConfigMap)}, nil
	}
}
