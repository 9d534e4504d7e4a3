// Package release reconciles a requested version with the changelog: it resolves
// the target version, finds or creates its section, applies the date directive,
// and appends change lines harvested from repository history.
package release

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changelog"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changes"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/semver"
)

var (
	// ErrInvalidVersionSpecifier is returned for input that is neither a version nor a keyword.
	ErrInvalidVersionSpecifier = errors.New("invalid version specifier")
	// ErrVersionNotMonotonic is returned when the target is older than the latest release.
	ErrVersionNotMonotonic = errors.New("version not monotonic")
	// ErrUnknownReleaseTarget is returned when an existing release was demanded but none matches.
	ErrUnknownReleaseTarget = errors.New("unknown release target")
	// ErrImmutableHistoricalDate is returned when a date change targets an older release.
	ErrImmutableHistoricalDate = errors.New("immutable historical date")
)

// Options are the per-call inputs of Reconcile.
type Options struct {
	// Since overrides the reference point for the change source.
	Since string
	// Date is applied to the target section.
	Date DateDirective
	// RequireExisting fails with ErrUnknownReleaseTarget instead of creating a section.
	RequireExisting bool
	// Formatter renders change records; nil means changes.DefaultFormatter.
	Formatter changes.Formatter
}

// Result is the outcome of a reconciliation.
type Result struct {
	Document *changelog.Document
	Target   changelog.ReleaseVersion
	// Specifier is the classified request that resolved to Target.
	Specifier semver.Specifier
	// Created is true when the section did not exist before.
	Created bool
	// Added holds the change lines appended by this call.
	Added []string
}

// Section returns the reconciled section in the document.
func (r *Result) Section() *changelog.Section {
	return r.Document.FindSection(r.Target)
}

// Reconciler merges change records into a changelog document.
type Reconciler struct {
	source     changes.Source
	now        func() time.Time
	dateFormat string
	logger     *zap.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the time source used by date directives.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithDateFormat sets the strftime layout used by the "today" directive.
func WithDateFormat(layout string) Option {
	return func(r *Reconciler) { r.dateFormat = layout }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// New creates a Reconciler reading history from source.
func New(source changes.Source, opts ...Option) *Reconciler {
	r := &Reconciler{
		source:     source,
		now:        time.Now,
		dateFormat: DefaultDateFormat,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ClassifySpecifier parses raw user input, reporting ErrInvalidVersionSpecifier on failure.
func ClassifySpecifier(raw string) (semver.Specifier, error) {
	spec, err := semver.Classify(raw)
	if err != nil {
		return semver.Specifier{}, fmt.Errorf("%w: %v", ErrInvalidVersionSpecifier, err)
	}
	return spec, nil
}

// ResolveVersion computes the target of spec against doc. "next" maps to the
// placeholder without numeric resolution. Any other specifier resolving below the
// latest release fails with ErrVersionNotMonotonic; equality is allowed only for
// the latest release's own spelling.
func ResolveVersion(spec semver.Specifier, doc *changelog.Document) (changelog.ReleaseVersion, error) {
	if spec.IsNext() {
		return changelog.Pending(), nil
	}

	latest := doc.LatestRelease()
	target, err := spec.Resolve(latest)
	if err != nil {
		return changelog.ReleaseVersion{}, fmt.Errorf("%w: %v", ErrInvalidVersionSpecifier, err)
	}

	if target.Less(latest) {
		return changelog.ReleaseVersion{}, fmt.Errorf("%w: %s is lower than the latest release %s",
			ErrVersionNotMonotonic, target, latest)
	}
	// v1.2.3.0 equals v1.2.3 but would get its own section and tag.
	if target.Compare(latest) == 0 && target.String() != latest.String() {
		return changelog.ReleaseVersion{}, fmt.Errorf("%w: %s is the latest release %s written differently",
			ErrVersionNotMonotonic, target, latest)
	}
	return changelog.Released(target), nil
}

// Reconcile classifies raw and runs ReconcileSpecifier.
func (r *Reconciler) Reconcile(ctx context.Context, raw string, doc *changelog.Document, opts Options) (*Result, error) {
	spec, err := ClassifySpecifier(raw)
	if err != nil {
		return nil, err
	}
	return r.ReconcileSpecifier(ctx, spec, doc, opts)
}

// ReconcileSpecifier mutates doc so the target section holds every change since
// the reference point and returns it with the resolved version. Nothing is written
// to disk; callers validate (tags, edits) before saving.
//
// Change lines are not deduplicated; an empty delta appends nothing.
func (r *Reconciler) ReconcileSpecifier(ctx context.Context, spec semver.Specifier, doc *changelog.Document, opts Options) (*Result, error) {
	if spec.Kind == semver.SpecExplicit {
		if err := r.checkHistoricalDate(doc, changelog.Released(spec.Version), opts.Date); err != nil {
			return nil, err
		}
	}

	target, err := ResolveVersion(spec, doc)
	if err != nil {
		return nil, err
	}
	log := r.logger.With(zap.String("specifier", spec.String()), zap.String("target", target.Label(doc.Format().Placeholder)))

	section, created, err := r.locateSection(doc, target, opts)
	if err != nil {
		return nil, err
	}

	if err := r.applyDate(doc, &section, created, opts.Date, log); err != nil {
		return nil, err
	}

	records, err := r.source.LogSince(ctx, opts.Since)
	if err != nil {
		return nil, fmt.Errorf("collecting changes: %w", err)
	}
	added := changes.FormatAll(records, opts.Formatter)
	section.AddChanges(added...)
	log.Debug("merged change records", zap.Int("added", len(added)), zap.Bool("created", created))

	doc.UpsertSection(section)

	return &Result{Document: doc, Target: target, Specifier: spec, Created: created, Added: added}, nil
}

// locateSection returns a working copy of the target section, creating an empty
// one unless opts.RequireExisting is set.
func (r *Reconciler) locateSection(doc *changelog.Document, target changelog.ReleaseVersion, opts Options) (changelog.Section, bool, error) {
	if existing := doc.FindSection(target); existing != nil {
		return existing.Clone(), false, nil
	}
	if opts.RequireExisting {
		return changelog.Section{}, false, fmt.Errorf("%w: no section for %s (available: %v)",
			ErrUnknownReleaseTarget, target.Label(doc.Format().Placeholder), doc.ListVersions())
	}
	return changelog.NewSection(target), true, nil
}

// applyDate sets the section date. The placeholder never gets a date.
func (r *Reconciler) applyDate(doc *changelog.Document, section *changelog.Section, created bool, d DateDirective, log *zap.Logger) error {
	if !d.Sets() {
		return nil
	}
	if section.IsPending() {
		log.Debug("ignoring date directive for unreleased section", zap.Stringer("directive", d))
		return nil
	}
	if !created {
		if err := r.checkHistoricalDate(doc, section.Version, d); err != nil {
			return err
		}
	}

	date, _ := d.Resolve(r.now(), r.dateFormat)
	section.Date = date
	return nil
}

// checkHistoricalDate rejects a date change on an existing released section
// that is not the latest release.
func (r *Reconciler) checkHistoricalDate(doc *changelog.Document, v changelog.ReleaseVersion, d DateDirective) error {
	if !d.Sets() || v.IsPending() {
		return nil
	}
	if doc.FindSection(v) == nil || doc.IsLatest(v) {
		return nil
	}
	return fmt.Errorf("%w: %s is not the latest release, refusing to change its date",
		ErrImmutableHistoricalDate, v)
}
