package dockerfile

import "strings"

// dockerignoreEntries is the canonical exclusion list: VCS metadata,
// build outputs, editor dirs, per-language caches, tests, docs, and the
// Dockerfile itself.
var dockerignoreEntries = []string{
	".git",
	".gitignore",
	".svn",
	"dist",
	"build",
	"*.log",
	".vscode",
	".idea",
	"*.swp",
	"node_modules",
	"__pycache__",
	"*.pyc",
	".pytest_cache",
	".venv",
	"venv",
	"**/*_test.go",
	"**/*.test.ts",
	"**/test_*.py",
	"**/*_test.py",
	"docs",
	"*.md",
	"README*",
	"Dockerfile",
	".dockerignore",
}

// Dockerignore renders the canonical exclusion list.
func Dockerignore() string {
	return strings.Join(dockerignoreEntries, "\n") + "\n"
}
