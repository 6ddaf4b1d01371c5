package models

import (
	"path/filepath"
	"strings"
	"sync"
)

// DeployableType is the kind of artifact being deployed.
type DeployableType string

const (
	WAR    DeployableType = "war"
	EAR    DeployableType = "ear"
	EJB    DeployableType = "ejb"
	RAR    DeployableType = "rar"
	SAR    DeployableType = "sar"
	Bundle DeployableType = "bundle"
	File   DeployableType = "file"
)

// DeployableTypes lists every known deployable type.
var DeployableTypes = []DeployableType{WAR, EAR, EJB, RAR, SAR, Bundle, File}

// Deployable is an application artifact to install into a container.
// Its name is derived lazily from the file and context and cached; the
// cache is safe for concurrent readers.
type Deployable struct {
	Type    DeployableType
	File    string
	Context string

	mu   sync.Mutex
	name string
}

// NewDeployable creates a deployable for the given file.
func NewDeployable(t DeployableType, file string) *Deployable {
	return &Deployable{Type: t, File: file}
}

// Name returns the deployable name, computing it on first use.
func (d *Deployable) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.name == "" {
		d.name = d.parseName()
	}
	return d.name
}

// WebContext returns the web context a WAR is served under. Non-web
// deployables have no context.
func (d *Deployable) WebContext() string {
	if d.Type != WAR {
		return ""
	}
	return d.Name()
}

// IsExpanded reports whether the deployable points at a directory rather than an archive.
func (d *Deployable) IsExpanded() bool {
	return filepath.Ext(d.File) == ""
}

// ValidContext reports whether a web context is safe to name a deploy
// target: no "." or ".." segments and no backslashes.
func ValidContext(ctx string) bool {
	if strings.Contains(ctx, `\`) {
		return false
	}
	for _, seg := range strings.Split(strings.Trim(ctx, "/"), "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func (d *Deployable) parseName() string {
	if d.Type == WAR && d.Context != "" && ValidContext(d.Context) {
		ctx := strings.Trim(d.Context, "/")
		if ctx == "" {
			return "ROOT"
		}
		// Nested contexts use the "#" separator servers expect in file names.
		return strings.ReplaceAll(ctx, "/", "#")
	}

	base := filepath.Base(filepath.Clean(d.File))
	if d.Type == File {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
