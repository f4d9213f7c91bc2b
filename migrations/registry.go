// Package migrations exposes the embedded schema trees and a registration
// helper for feeding them into a SQL migration runner per dialect.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	commercewebhooks "github.com/goliatone/go-commerce-webhooks"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const (
	defaultSourceLabel = "go-commerce-webhooks"
	embeddedRoot       = "data/sql/migrations"
	sqliteSubdir       = "sqlite"
)

// FilesystemSpec is one dialect's migration tree.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// Registration records what was handed to the register function.
type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc receives one dialect tree at a time. Implementations typically
// call the persistence client's RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

// WithSourceLabel overrides the label reported alongside each registration.
func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// WithValidationTargets restricts registration to the named dialects.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		next := normalizeDialects(targets)
		if len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

// Filesystems resolves the postgres and sqlite migration trees. The postgres
// files live at the tree root and the sqlite variants under sqlite/. An
// optional source overrides the embedded filesystem, for callers that ship
// their own schema.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := commercewebhooks.GetCoreMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, basePath, err := resolveTreeRoot(root)
	if err != nil {
		return nil, err
	}
	sqliteTree, err := fs.Sub(base, sqliteSubdir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite tree: %w", err)
	}

	specs := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: joinTreePath(basePath, sqliteSubdir), FS: sqliteTree},
	}
	for _, spec := range specs {
		if err := ensureUpMigrations(spec); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// Register resolves the migration trees and hands each validated dialect to
// registerFn. Both dialects are registered unless narrowed with
// WithValidationTargets.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}

	specs, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = specs

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}
	if strings.TrimSpace(reg.SourceLabel) == "" {
		return reg, fmt.Errorf("migrations: source label is required")
	}
	if len(reg.ValidationTargets) == 0 {
		return reg, fmt.Errorf("migrations: validation targets are required")
	}

	wanted := make(map[string]struct{}, len(reg.ValidationTargets))
	for _, target := range normalizeDialects(reg.ValidationTargets) {
		wanted[target] = struct{}{}
	}

	for _, spec := range reg.Filesystems {
		if _, ok := wanted[spec.Dialect]; !ok {
			continue
		}
		if err := registerFn(ctx, spec.Dialect, reg.SourceLabel, spec.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", spec.Dialect, spec.Path, err)
		}
	}
	return reg, nil
}

// resolveTreeRoot accepts either the module filesystem or a filesystem that is
// already rooted at the migration directory.
func resolveTreeRoot(root fs.FS) (fs.FS, string, error) {
	if info, err := fs.Stat(root, embeddedRoot); err == nil && info.IsDir() {
		sub, err := fs.Sub(root, embeddedRoot)
		if err != nil {
			return nil, "", fmt.Errorf("migrations: resolve %s: %w", embeddedRoot, err)
		}
		return sub, embeddedRoot, nil
	}
	if entries, err := fs.ReadDir(root, "."); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
				return root, ".", nil
			}
		}
	}
	return nil, "", fmt.Errorf("migrations: %s not found in source filesystem", embeddedRoot)
}

func ensureUpMigrations(spec FilesystemSpec) error {
	matches, err := fs.Glob(spec.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("migrations: glob %s %s: %w", spec.Dialect, spec.Path, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("migrations: %s tree %q has no *.up.sql files", spec.Dialect, spec.Path)
	}
	return nil
}

func normalizeDialects(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func joinTreePath(base string, suffix string) string {
	if base == "." {
		return suffix
	}
	return strings.TrimSuffix(base, "/") + "/" + suffix
}
