// Package dayfile reads and writes a day of tasks as YAML, for planning
// offline without a database.
package dayfile

import (
	"context"
	"fmt"
	"os"
	"sync"

	yaml "go.yaml.in/yaml/v3"

	"reup-dayplan-backend/internal/dayplan"
	"reup-dayplan-backend/internal/planner"
)

// File is the on-disk layout:
//
//	now: "09:00"          # optional
//	settings: {...}       # optional, defaults otherwise
//	tasks:
//	  - id: a
//	    kind: flexible
//	    duration_minutes: 30
type File struct {
	Now      string            `yaml:"now,omitempty"`
	Settings *planner.Settings `yaml:"settings,omitempty"`
	Tasks    []planner.Task    `yaml:"tasks"`
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	seen := map[string]bool{}
	for i, t := range f.Tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("%s: task %d has no id", path, i+1)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%s: duplicate task id %q", path, t.ID)
		}
		seen[t.ID] = true
		if t.Kind == "" {
			f.Tasks[i].Kind = planner.KindFlexible
		}
	}
	return &f, nil
}

func (f *File) Save(path string) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// PlanningSettings returns the file's settings, or the defaults when it has none.
func (f *File) PlanningSettings() planner.Settings {
	if f.Settings == nil {
		return planner.DefaultSettings()
	}
	return *f.Settings
}

// Store serves a File as task and settings store. Updates change the
// in-memory copy only; call File to get it back.
type Store struct {
	mu   sync.Mutex
	file File
}

func NewStore(f *File) *Store {
	cp := *f
	cp.Tasks = append([]planner.Task(nil), f.Tasks...)
	return &Store{file: cp}
}

func (s *Store) GetTodayTasks(context.Context) ([]planner.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]planner.Task(nil), s.file.Tasks...), nil
}

func (s *Store) GetPlanningSettings(context.Context) (planner.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.PlanningSettings(), nil
}

func (s *Store) UpdateTask(_ context.Context, id string, p dayplan.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.file.Tasks {
		t := &s.file.Tasks[i]
		if t.ID != id {
			continue
		}
		switch {
		case p.ClearStart:
			t.StartTime = ""
		case p.StartTime != "":
			t.StartTime = p.StartTime
		}
		if p.Kind != "" {
			t.Kind = p.Kind
		}
		return nil
	}
	return fmt.Errorf("task %q not found", id)
}

// File returns a copy of the current state.
func (s *Store) File() *File {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.file
	cp.Tasks = append([]planner.Task(nil), s.file.Tasks...)
	return &cp
}
