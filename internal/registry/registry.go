// Package registry holds the authoritative academic-records state machine.
//
// A Registry owns every table behind one lock. Commands take the write lock for
// their whole check, journal and apply sequence, so a rejected command leaves no
// trace and no query ever observes a half-applied command.
package registry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/degree-registry-api/internal/models"
	appErrors "github.com/noah-isme/degree-registry-api/pkg/errors"
)

// Journal records committed commands. Append is called with the registry
// write lock held and before the command takes effect; an error rejects the
// command.
type Journal interface {
	Append(ctx context.Context, entry *models.JournalEntry) error
}

// NopJournal discards entries.
type NopJournal struct{}

// Append implements Journal.
func (NopJournal) Append(context.Context, *models.JournalEntry) error { return nil }

// Option customises a Registry.
type Option func(*Registry)

// WithJournal sets the journal receiving committed commands.
func WithJournal(j Journal) Option {
	return func(r *Registry) {
		if j != nil {
			r.journal = j
		}
	}
}

// WithClock overrides the clock stamping journal entries.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Registry is the single store of professors, students, courses, classes,
// enrollments and degree records.
type Registry struct {
	mu sync.RWMutex

	professors  map[models.Principal]models.Professor
	students    map[int64]models.Student
	courses     map[string]models.Course
	classes     map[int64]models.Class
	enrollments map[models.EnrollmentKey]models.Enrollment
	degrees     map[models.EnrollmentKey]models.DegreeRecord

	// classEnrollments keeps enrolled student ids per class in enrollment order.
	classEnrollments map[int64][]int64

	// classVersions advances whenever a class's enrollments or degrees change.
	classVersions map[int64]int64

	lastClassID int64
	lastOrder   int64
	seq         int64

	journal   Journal
	now       func() time.Time
	replaying bool
}

// New constructs an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		professors:       make(map[models.Principal]models.Professor),
		students:         make(map[int64]models.Student),
		courses:          make(map[string]models.Course),
		classes:          make(map[int64]models.Class),
		enrollments:      make(map[models.EnrollmentKey]models.Enrollment),
		degrees:          make(map[models.EnrollmentKey]models.DegreeRecord),
		classEnrollments: make(map[int64][]int64),
		classVersions:    make(map[int64]int64),
		journal:          NopJournal{},
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// commit journals the command and then applies it. During replay the entry
// already exists, so only the sequence advances.
func (r *Registry) commit(ctx context.Context, caller models.Principal, command string, payload interface{}, apply func()) error {
	if r.replaying {
		r.seq++
		apply()
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode command")
	}
	entry := &models.JournalEntry{
		Seq:       r.seq + 1,
		Command:   command,
		Principal: caller,
		Payload:   raw,
		AppliedAt: r.now().UTC(),
	}
	if err := r.journal.Append(ctx, entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record command")
	}
	r.seq = entry.Seq
	apply()
	return nil
}

func requireCaller(caller models.Principal) error {
	if !caller.Valid() {
		return appErrors.Clone(appErrors.ErrNotAuthorized, "caller identity required")
	}
	return nil
}

func checkDegree(value int64) error {
	if value < models.MinDegree || value > models.MaxDegree {
		return appErrors.Clone(appErrors.ErrOutOfRange, "degree must be between 0 and 1000")
	}
	return nil
}
