package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/contest-system/models"
	"github.com/Dosada05/contest-system/repositories"
	"github.com/Dosada05/contest-system/storage"
)

// EventPublisher доставляет события об изменениях подписчикам конкурса.
type EventPublisher interface {
	Publish(contestID int, eventType string, payload interface{})
}

// ValidationError carries per-field messages; it matches ErrValidationFailed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

type validator struct {
	fields map[string]string
}

func (v *validator) add(field, message string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = message
	}
}

func (v *validator) requireText(field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "must not be blank")
		return
	}
	v.maxLength(field, value, max)
}

func (v *validator) maxLength(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// uniquePositiveIDs drops non-positive and repeated ids, keeping first-seen order.
func uniquePositiveIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// lastProcess returns the stage with the highest sort, or nil.
func lastProcess(processes []*models.Process) *models.Process {
	var last *models.Process
	for _, p := range processes {
		if last == nil || p.Sort > last.Sort {
			last = p
		}
	}
	return last
}

func sortProcesses(processes []*models.Process) {
	sort.SliceStable(processes, func(i, j int) bool { return processes[i].Sort < processes[j].Sort })
}

func processesToValues(slice []*models.Process) []models.Process {
	result := make([]models.Process, 0, len(slice))
	for _, p := range slice {
		if p != nil {
			result = append(result, *p)
		}
	}
	return result
}

func groupsToValues(slice []*models.Group) []models.Group {
	result := make([]models.Group, 0, len(slice))
	for _, g := range slice {
		if g != nil {
			result = append(result, *g)
		}
	}
	return result
}

func populateProcessAttachmentURLFunc(process *models.Process, uploader storage.FileUploader) {
	if process != nil && process.AttachmentKey != nil && *process.AttachmentKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*process.AttachmentKey)
		if url != "" {
			process.AttachmentURL = &url
		}
	}
}

func translateContestError(err error) error {
	if errors.Is(err, repositories.ErrContestNotFound) {
		return ErrContestNotFound
	}
	return fmt.Errorf("failed to load contest: %w", err)
}

func translateProcessError(err error) error {
	if errors.Is(err, repositories.ErrProcessNotFound) {
		return ErrProcessNotFound
	}
	return fmt.Errorf("failed to load process: %w", err)
}
