package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/degree-registry-api/internal/models"
)

// Replay applies journal entries in order without journaling them again.
// Entries must continue the current sequence. The first failing entry stops
// the replay; entries before it stay applied.
func (r *Registry) Replay(ctx context.Context, entries []models.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replaying = true
	defer func() { r.replaying = false }()

	for _, entry := range entries {
		if entry.Seq != r.seq+1 {
			return fmt.Errorf("replay entry %d: expected sequence %d", entry.Seq, r.seq+1)
		}
		if err := r.replayEntry(ctx, entry); err != nil {
			return fmt.Errorf("replay entry %d (%s): %w", entry.Seq, entry.Command, err)
		}
	}
	return nil
}

func (r *Registry) replayEntry(ctx context.Context, entry models.JournalEntry) error {
	caller := entry.Principal
	switch entry.Command {
	case models.CommandRegisterProfessor:
		var p models.RegisterProfessorPayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return err
		}
		return r.registerProfessor(ctx, caller, p.DisplayName)
	case models.CommandRegisterStudent:
		var p models.RegisterStudentPayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return err
		}
		return r.registerStudent(ctx, caller, p.StudentID, p.DisplayName)
	case models.CommandRegisterCourse:
		var p models.RegisterCoursePayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return err
		}
		return r.registerCourse(ctx, caller, p.Name, p.Code)
	case models.CommandRegisterClass:
		var p models.RegisterClassPayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return err
		}
		classID, err := r.registerClass(ctx, caller, p.CourseCode)
		if err != nil {
			return err
		}
		if classID != p.ClassID {
			return fmt.Errorf("class id mismatch: journal %d, assigned %d", p.ClassID, classID)
		}
		return nil
	case models.CommandEnrollStudent:
		var p models.EnrollStudentPayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return err
		}
		return r.enrollStudent(ctx, caller, p.ClassID, p.StudentID)
	case models.CommandAssignDegree:
		var p models.DegreePayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return err
		}
		return r.assignDegree(ctx, caller, p.ClassID, p.StudentID, p.Value)
	case models.CommandAlterDegree:
		var p models.DegreePayload
		if err := json.Unmarshal(entry.Payload, &p); err != nil {
			return err
		}
		return r.alterDegree(ctx, caller, p.ClassID, p.StudentID, p.Value)
	default:
		return fmt.Errorf("unknown command %q", entry.Command)
	}
}
