package rbridge

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/albapepper/footy-data/internal/metrics"
)

const (
	DefaultCRANMirror = "https://cloud.r-project.org"

	// statusTTL bounds how long Status reuses the last check.
	statusTTL = time.Hour
)

// PackageStatus describes the installed and latest released versions of the
// R data package. Empty versions mean not installed / not on CRAN.
type PackageStatus struct {
	Package   string `json:"package"`
	Installed string `json:"installed"`
	Available string `json:"available"`
	UpToDate  bool   `json:"up_to_date"`
}

// PackageManager checks and installs the R package the bridge depends on.
type PackageManager struct {
	exec   Executor
	pkg    string
	mirror string
	logger *slog.Logger

	mu        sync.Mutex
	last      PackageStatus
	checkedAt time.Time
}

func NewPackageManager(exec Executor, pkg, mirror string, logger *slog.Logger) *PackageManager {
	if logger == nil {
		logger = slog.Default()
	}
	if pkg == "" {
		pkg = DefaultPackage
	}
	if mirror == "" {
		mirror = DefaultCRANMirror
	}
	return &PackageManager{exec: exec, pkg: pkg, mirror: mirror, logger: logger}
}

func (m *PackageManager) Package() string { return m.pkg }

// InstalledVersion returns the installed version, "" when not installed.
func (m *PackageManager) InstalledVersion(ctx context.Context) (string, error) {
	script := fmt.Sprintf(
		`v <- tryCatch(as.character(utils::packageVersion(%s)), error = function(e) "")`+"\n"+
			`cat(%s, v, sep = "")`,
		rString(m.pkg), rString(payloadMarker))
	out, err := run(ctx, m.exec, script)
	if err != nil {
		return "", fmt.Errorf("installed version of %s: %w", m.pkg, err)
	}
	return string(out), nil
}

// AvailableVersion returns the latest version on the CRAN mirror, "" when the
// mirror does not list the package.
func (m *PackageManager) AvailableVersion(ctx context.Context) (string, error) {
	script := fmt.Sprintf(
		`ap <- utils::available.packages(repos = %s)`+"\n"+
			`v <- if (%s %%in%% rownames(ap)) ap[%s, "Version"] else ""`+"\n"+
			`cat(%s, v, sep = "")`,
		rString(m.mirror), rString(m.pkg), rString(m.pkg), rString(payloadMarker))
	out, err := run(ctx, m.exec, script)
	if err != nil {
		return "", fmt.Errorf("available version of %s: %w", m.pkg, err)
	}
	return string(out), nil
}

// Status returns the result of the last check when it is under an hour
// old, and checks again otherwise.
func (m *PackageManager) Status(ctx context.Context) (PackageStatus, error) {
	m.mu.Lock()
	last, at := m.last, m.checkedAt
	m.mu.Unlock()
	if !at.IsZero() && time.Since(at) < statusTTL {
		return last, nil
	}
	return m.check(ctx)
}

// check compares the installed version against CRAN.
func (m *PackageManager) check(ctx context.Context) (PackageStatus, error) {
	st := PackageStatus{Package: m.pkg}
	var err error
	if st.Installed, err = m.InstalledVersion(ctx); err != nil {
		return st, err
	}
	if st.Available, err = m.AvailableVersion(ctx); err != nil {
		return st, err
	}
	st.UpToDate = st.Installed != "" && (st.Available == "" || CompareVersions(st.Installed, st.Available) >= 0)
	m.record(st)
	return st, nil
}

// Install installs the package from the CRAN mirror.
func (m *PackageManager) Install(ctx context.Context) error {
	script := fmt.Sprintf(
		`utils::install.packages(%s, repos = %s, quiet = TRUE)`+"\n"+
			`ok <- requireNamespace(%s, quietly = TRUE)`+"\n"+
			`cat(%s, if (ok) "ok" else "failed", sep = "")`,
		rString(m.pkg), rString(m.mirror), rString(m.pkg), rString(payloadMarker))
	out, err := run(ctx, m.exec, script)
	if err != nil {
		return fmt.Errorf("install %s: %w", m.pkg, err)
	}
	if string(out) != "ok" {
		return fmt.Errorf("install %s: package not loadable after install", m.pkg)
	}
	return nil
}

// EnsureLatest installs the package when it is missing or older than the
// CRAN release, and returns the resulting status.
func (m *PackageManager) EnsureLatest(ctx context.Context) (PackageStatus, error) {
	st, err := m.check(ctx)
	if err != nil {
		return st, err
	}
	if st.UpToDate {
		m.logger.Info("R package up to date", "package", m.pkg, "version", st.Installed)
		return st, nil
	}

	m.logger.Info("Installing R package", "package", m.pkg, "installed", st.Installed, "available", st.Available)
	if err := m.Install(ctx); err != nil {
		return st, err
	}
	return m.check(ctx)
}

func (m *PackageManager) record(st PackageStatus) {
	m.mu.Lock()
	m.last, m.checkedAt = st, time.Now()
	m.mu.Unlock()

	if st.UpToDate {
		metrics.RPackageUpToDate.Set(1)
	} else {
		metrics.RPackageUpToDate.Set(0)
	}
}

// CompareVersions compares R package versions ("1.5.0", "1.4-2",
// "1.5.0.9000") numerically by component. It returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func versionParts(v string) []int {
	fields := strings.FieldsFunc(strings.TrimSpace(v), func(r rune) bool { return r == '.' || r == '-' })
	out := make([]int, len(fields))
	for i, f := range fields {
		out[i], _ = strconv.Atoi(f)
	}
	return out
}
