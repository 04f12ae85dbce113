package restore

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/willibrandon/pgrestore/internal/pgurl"
)

// BuildEnv returns the child process environment: a copy of parent with
// PGPASSWORD (when the descriptor has a password) and PGSSLMODE overridden,
// and toolDir prepended to PATH when it exists on disk. parent is not
// modified.
func BuildEnv(parent []string, desc pgurl.Descriptor, sslmode, toolDir string) []string {
	env := make([]string, len(parent))
	copy(env, parent)

	if desc.HasPassword {
		env = setEnv(env, "PGPASSWORD", desc.Password)
	}
	if sslmode != "" {
		env = setEnv(env, "PGSSLMODE", sslmode)
	}

	if toolDir != "" {
		if info, err := os.Stat(toolDir); err == nil && info.IsDir() {
			path, _ := lookupEnv(env, "PATH")
			env = setEnv(env, "PATH", toolDir+string(os.PathListSeparator)+path)
		}
	}

	return env
}

// foldEnvCase makes environment keys case-insensitive, as Windows treats
// Path and PATH as the same variable.
var foldEnvCase = runtime.GOOS == "windows"

func envKeyEqual(a, b string) bool {
	if foldEnvCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// lookupEnv returns the value of key in env. Later entries win, matching
// how exec resolves duplicates.
func lookupEnv(env []string, key string) (string, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(env[i], "="); ok && envKeyEqual(k, key) {
			return v, true
		}
	}
	return "", false
}

// setEnv drops every existing entry for key and appends key=value.
func setEnv(env []string, key, value string) []string {
	out := env[:0]
	for _, kv := range env {
		if k, _, ok := strings.Cut(kv, "="); ok && envKeyEqual(k, key) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, key+"="+value)
}

// lookPath resolves name against the PATH value of the child environment
// rather than the current process.
func lookPath(name, pathEnv string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		p, err := exec.LookPath(name)
		if err != nil {
			return "", &ToolNotFoundError{Client: name}
		}
		return p, nil
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			// Empty PATH entries are ignored rather than treated as ".".
			continue
		}
		if p, err := exec.LookPath(filepath.Join(dir, name)); err == nil {
			return p, nil
		}
	}

	return "", &ToolNotFoundError{Client: name}
}
