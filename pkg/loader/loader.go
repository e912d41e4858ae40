// Package loader implements C1: walking a workspace, classifying files
// as tool or connector modules, and extracting their metadata from
// whichever of the two source conventions they are written in.
package loader

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"manifestctl/pkg/module"
)

// Warning is a non-fatal issue surfaced while walking the workspace: an
// unreadable file or a present-but-malformed metadata block. Neither
// aborts the load.
type Warning struct {
	Path    string
	Message string
}

// Options configures a single Load call.
type Options struct {
	// ToolsDir and ConnectorsDir override the standard "tools"/"connectors"
	// subtree names.
	ToolsDir      string
	ConnectorsDir string
	// ExtraRoots are additional directories walked alongside the standard
	// subtrees; modules under them are classified the same way (by
	// containing subtree name), falling back to KindTool when ambiguous.
	ExtraRoots []string
}

func (o Options) toolsDir() string {
	if o.ToolsDir != "" {
		return o.ToolsDir
	}
	return "tools"
}

func (o Options) connectorsDir() string {
	if o.ConnectorsDir != "" {
		return o.ConnectorsDir
	}
	return "connectors"
}

// Loader walks a workspace directory and extracts Module records.
type Loader struct {
	Log      *logrus.Entry
	Opts     Options
	Warnings []Warning
}

// New builds a Loader. log may be nil, in which case a discarding entry
// is used — callers always take a *logrus.Entry explicitly rather than
// reaching for a package-level default.
func New(log *logrus.Entry, opts Options) *Loader {
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = logrus.NewEntry(l)
	}
	return &Loader{Log: log, Opts: opts}
}

// Load walks the workspace and returns modules in stable directory-walk
// order. Output ordering is insertion order of the walk; downstream
// components must not assume any other ordering.
func (l *Loader) Load(workspace string) ([]module.Module, error) {
	var modules []module.Module

	roots := []struct {
		dir  string
		kind module.Kind
	}{
		{l.Opts.toolsDir(), module.KindTool},
		{l.Opts.connectorsDir(), module.KindConnector},
	}

	for _, root := range roots {
		full := filepath.Join(workspace, root.dir)
		found, err := l.walkRoot(full, root.kind)
		if err != nil {
			return nil, err
		}
		modules = append(modules, found...)
	}

	for _, extra := range l.Opts.ExtraRoots {
		full := filepath.Join(workspace, extra)
		kind := module.KindTool
		if strings.Contains(strings.ToLower(extra), "connector") {
			kind = module.KindConnector
		}
		found, err := l.walkRoot(full, kind)
		if err != nil {
			return nil, err
		}
		modules = append(modules, found...)
	}

	return modules, nil
}

// walkRoot performs a single stable directory walk over one subtree,
// classifying every kindA/kindB source file it finds as kind.
func (l *Loader) walkRoot(root string, kind module.Kind) ([]module.Module, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			l.warn(path, err.Error())
			return nil
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".ts", ".py":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []module.Module
	for _, path := range paths {
		m, ok := l.loadFile(path, root, kind)
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (l *Loader) loadFile(path, root string, kind module.Kind) (module.Module, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		l.warn(path, "unreadable: "+err.Error())
		return module.Module{}, false
	}
	src := string(raw)

	relPath, err := filepath.Rel(filepath.Dir(root), path)
	if err != nil {
		relPath = path
	}

	var (
		meta module.Metadata
		lang module.Language
		ok   bool
	)

	switch filepath.Ext(path) {
	case ".ts":
		lang = module.LangTS
		meta, ok = extractConventionA(src)
	case ".py":
		lang = module.LangPy
		meta, ok = extractConventionB(src)
	default:
		return module.Module{}, false
	}

	if !ok {
		l.warn(path, "malformed or missing metadata, skipping")
		return module.Module{}, false
	}

	if meta.Name == "" {
		l.warn(path, "metadata has no name, skipping")
		return module.Module{}, false
	}

	return module.Module{
		Name:     meta.Name,
		Path:     filepath.ToSlash(relPath),
		Kind:     kind,
		Language: lang,
		Metadata: meta,
	}, true
}

func (l *Loader) warn(path, msg string) {
	l.Warnings = append(l.Warnings, Warning{Path: path, Message: msg})
	l.Log.WithField("path", path).Warn(msg)
}
