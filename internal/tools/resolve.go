// Package tools locates the external binaries the pipeline shells out
// to: yt-dlp, ffmpeg and ffprobe.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/alnah/go-chapterize/internal/execx"
)

// ErrNotFound indicates a required binary could not be located.
var ErrNotFound = errors.New("binary not found")

// Environment variables honored as explicit path overrides.
const (
	EnvYTDLPPath   = "YTDLP_PATH"
	EnvFFmpegPath  = "FFMPEG_PATH"
	EnvFFprobePath = "FFPROBE_PATH"
)

// envOverrides maps binary names onto their override variables.
var envOverrides = map[string]string{
	"yt-dlp":  EnvYTDLPPath,
	"ffmpeg":  EnvFFmpegPath,
	"ffprobe": EnvFFprobePath,
}

// Resolver locates one external binary.
type Resolver struct {
	name     string
	getenv   func(string) string
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
	runner   execx.Runner
	logger   hclog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGetenv sets the environment variable getter (for testing).
func WithGetenv(fn func(string) string) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.getenv = fn
		}
	}
}

// WithLookPath sets the PATH lookup function (for testing).
func WithLookPath(fn func(string) (string, error)) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.lookPath = fn
		}
	}
}

// WithStat sets the file stat function (for testing).
func WithStat(fn func(string) (os.FileInfo, error)) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.stat = fn
		}
	}
}

// WithRunner sets the process runner used for version checks.
func WithRunner(rn execx.Runner) ResolverOption {
	return func(r *Resolver) {
		if rn != nil {
			r.runner = rn
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l hclog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l.Named("tools")
		}
	}
}

// NewResolver creates a Resolver for the named binary ("yt-dlp",
// "ffmpeg" or "ffprobe").
func NewResolver(name string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		name:     name,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		stat:     os.Stat,
		runner:   execx.NewProcessRunner(),
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve locates the binary using the following precedence:
//  1. The binary's override environment variable (error if set but missing).
//  2. configured, when non-empty and not the bare binary name.
//  3. System PATH.
func (r *Resolver) Resolve(configured string) (string, error) {
	if env := envOverrides[r.name]; env != "" {
		if p := r.getenv(env); p != "" {
			if _, err := r.stat(p); err != nil {
				return "", fmt.Errorf("%w: %s is set to %q but no binary is there", ErrNotFound, env, p)
			}
			return p, nil
		}
	}

	if configured != "" && configured != r.name {
		if _, err := r.stat(configured); err != nil {
			return "", fmt.Errorf("%w: configured path %q does not exist", ErrNotFound, configured)
		}
		return configured, nil
	}

	p, err := r.lookPath(r.name)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not on PATH", ErrNotFound, r.name)
	}
	return p, nil
}

var versionRe = regexp.MustCompile(`\d+(?:\.\d+)+`)

// CheckVersion runs the binary's version flag and logs what it finds.
// Failures are logged, never fatal: an unparseable version string should
// not block a working binary.
func (r *Resolver) CheckVersion(ctx context.Context, path string) {
	flag := "-version"
	if r.name == "yt-dlp" {
		flag = "--version"
	}
	res := r.runner.Run(ctx, path, []string{flag}, 0)
	if !res.OK {
		r.logger.Warn("version check failed", "binary", r.name, "path", path)
		return
	}
	version := versionRe.FindString(strings.TrimSpace(res.Stdout))
	if version == "" {
		r.logger.Warn("could not parse version output", "binary", r.name)
		return
	}
	r.logger.Debug("binary resolved", "binary", r.name, "path", path, "version", version)
}
