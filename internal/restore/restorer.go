// Package restore feeds a backup file into the psql client.
package restore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/willibrandon/pgrestore/internal/logger"
	"github.com/willibrandon/pgrestore/internal/pgurl"
)

const (
	// DefaultClient is the client binary resolved on the child PATH.
	DefaultClient = "psql"
	// DefaultSSLMode forces an encrypted connection.
	DefaultSSLMode = "require"
	// DefaultToolDir is the Homebrew libpq location, prepended to PATH when present.
	DefaultToolDir = "/opt/homebrew/opt/libpq/bin"
)

// Options configures a Restorer. Zero values fall back to the defaults above.
type Options struct {
	Client      string
	ToolDir     string
	SSLMode     string
	Compression Compression

	// Stdout and Stderr receive the client's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// Environ supplies the parent environment. Defaults to os.Environ.
	Environ func() []string
}

// Result describes a completed restore.
type Result struct {
	ID            string
	Client        string
	BytesStreamed int64
	Duration      time.Duration
}

// Restorer runs the restore client against a single target.
type Restorer struct {
	opts Options
}

// New creates a Restorer with defaults applied.
func New(opts Options) *Restorer {
	if opts.Client == "" {
		opts.Client = DefaultClient
	}
	if opts.SSLMode == "" {
		opts.SSLMode = DefaultSSLMode
	}
	if opts.Compression == "" {
		opts.Compression = CompressionAuto
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	return &Restorer{opts: opts}
}

// Env returns the environment the client will be started with.
func (r *Restorer) Env(desc pgurl.Descriptor) []string {
	return BuildEnv(r.opts.Environ(), desc, r.opts.SSLMode, r.opts.ToolDir)
}

// Run streams the backup at backupPath into the client connected to desc and
// waits for it to exit. The backup file is closed before Run returns.
func (r *Restorer) Run(ctx context.Context, desc pgurl.Descriptor, backupPath string) (*Result, error) {
	id := uuid.NewString()
	log := logger.With("restore_id", id, "target", desc.String(), "backup", backupPath)

	info, err := os.Stat(backupPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Error("Backup file not found")
			return nil, &MissingFileError{Path: backupPath}
		}
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}

	env := r.Env(desc)
	pathEnv, _ := lookupEnv(env, "PATH")
	clientPath, err := lookPath(r.opts.Client, pathEnv)
	if err != nil {
		log.Error("Restore client not found", "client", r.opts.Client)
		return nil, err
	}

	src, err := OpenBackup(backupPath, r.opts.Compression)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	input := &countingReader{r: src}

	cmd := exec.CommandContext(ctx, clientPath, desc.Args()...)
	cmd.Env = env
	cmd.Stdin = input
	cmd.Stdout = r.opts.Stdout
	cmd.Stderr = r.opts.Stderr

	log.Info("Starting restore",
		"client", clientPath,
		"size", humanize.Bytes(uint64(info.Size())),
		"password_set", desc.HasPassword,
		"sslmode", r.opts.SSLMode,
	)

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			log.Error("Restore client failed", "exit_code", exitErr.ExitCode(), "duration", elapsed)
			return nil, &ExitError{Client: r.opts.Client, Code: exitErr.ExitCode()}
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			log.Error("Restore client not found", "client", clientPath, "error", err)
			return nil, &ToolNotFoundError{Client: clientPath}
		default:
			log.Error("Restore client could not run", "error", err)
			return nil, fmt.Errorf("failed to run %s: %w", r.opts.Client, err)
		}
	}

	log.Info("Restore finished",
		"streamed", humanize.Bytes(uint64(input.n)),
		"duration", elapsed,
	)

	return &Result{
		ID:            id,
		Client:        clientPath,
		BytesStreamed: input.n,
		Duration:      elapsed,
	}, nil
}
