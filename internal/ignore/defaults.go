package ignore

// DefaultPatterns are the baseline exclusions applied to every repository
// before .gitignore and CLI overrides are considered: VCS metadata, build
// output, dependency directories, and common binary/lock artifacts.
var DefaultPatterns = []string{
	".git/",
	".hg/",
	".svn/",
	"node_modules/",
	"vendor/",
	"__pycache__/",
	".venv/",
	"venv/",
	"dist/",
	"build/",
	"target/",
	".next/",
	"*.pyc",
	"*.pyo",
	"*.so",
	"*.dylib",
	"*.dll",
	"*.exe",
	"*.o",
	"*.a",
	"*.min.js",
	"*.lock",
	"*.log",
}

// LoadDefaults registers DefaultPatterns on m as if they had come from a
// default-ignore file, without requiring one on disk.
func (m *Manager) LoadDefaults() {
	for _, p := range DefaultPatterns {
		m.patterns = append(m.patterns, NewPattern(p, "default"))
	}
}
