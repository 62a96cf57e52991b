package domain

import (
	"errors"
	"testing"
)

// --- NewTrack Tests ---

func TestNewTrack_Valid(t *testing.T) {
	def, err := NewTrack(TrackConfig{
		Name: "ingest",
		Tasks: []TaskRef{
			{ID: "extract"},
			{ID: "transcribe"},
		},
		SecondaryLog: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.Name != "ingest" {
		t.Errorf("expected name ingest, got %s", def.Name)
	}
	if len(def.Tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(def.Tasks))
	}
	if !def.SecondaryLog {
		t.Error("SecondaryLog should be set")
	}
}

func TestNewTrack_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TrackConfig
		wantErr error
	}{
		{
			name:    "empty name",
			cfg:     TrackConfig{Tasks: []TaskRef{{ID: "a"}}},
			wantErr: ErrEmptyName,
		},
		{
			name:    "no tasks",
			cfg:     TrackConfig{Name: "t"},
			wantErr: ErrEmptyTrack,
		},
		{
			name:    "empty task id",
			cfg:     TrackConfig{Name: "t", Tasks: []TaskRef{{ID: ""}}},
			wantErr: ErrEmptyTaskID,
		},
		{
			name:    "duplicate task id",
			cfg:     TrackConfig{Name: "t", Tasks: []TaskRef{{ID: "a"}, {ID: "a"}}},
			wantErr: ErrDuplicateTask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrack(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewTrack_CopiesTasks(t *testing.T) {
	tasks := []TaskRef{{ID: "a"}}
	def, err := NewTrack(TrackConfig{Name: "t", Tasks: tasks})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the caller's slice must not affect the definition
	tasks[0].ID = "mutated"
	if def.Tasks[0].ID != "a" {
		t.Error("definition should hold its own copy of tasks")
	}
}

// --- NewOrchestrator Tests ---

func TestNewOrchestrator_Valid(t *testing.T) {
	track, _ := NewTrack(TrackConfig{Name: "audio", Tasks: []TaskRef{{ID: "extract"}}})

	def, err := NewOrchestrator(OrchestratorConfig{
		Name: "enrich",
		Branches: []Branch{
			{Task: &TaskRef{ID: "score"}},
			{Track: track},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := def.BranchIDs()
	if len(ids) != 2 || ids[0] != "score" || ids[1] != "audio" {
		t.Errorf("unexpected branch ids: %v", ids)
	}
}

func TestNewOrchestrator_Invalid(t *testing.T) {
	track, _ := NewTrack(TrackConfig{Name: "audio", Tasks: []TaskRef{{ID: "extract"}}})

	tests := []struct {
		name    string
		cfg     OrchestratorConfig
		wantErr error
	}{
		{
			name:    "empty name",
			cfg:     OrchestratorConfig{Branches: []Branch{{Task: &TaskRef{ID: "a"}}}},
			wantErr: ErrEmptyName,
		},
		{
			name:    "no branches",
			cfg:     OrchestratorConfig{Name: "o"},
			wantErr: ErrNoBranches,
		},
		{
			name:    "empty branch",
			cfg:     OrchestratorConfig{Name: "o", Branches: []Branch{{}}},
			wantErr: ErrBranchShape,
		},
		{
			name: "both task and track",
			cfg: OrchestratorConfig{
				Name:     "o",
				Branches: []Branch{{Task: &TaskRef{ID: "a"}, Track: track}},
			},
			wantErr: ErrBranchShape,
		},
		{
			name: "duplicate branch id",
			cfg: OrchestratorConfig{
				Name:     "o",
				Branches: []Branch{{Task: &TaskRef{ID: "a"}}, {Task: &TaskRef{ID: "a"}}},
			},
			wantErr: ErrDuplicateBranch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrchestrator(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// --- RunInput Tests ---

func TestRunInput_Validate(t *testing.T) {
	in := &RunInput{TenantID: "t1", ProjectID: "p1"}
	if err := in.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	in = &RunInput{ProjectID: "p1"}
	if !errors.Is(in.Validate(), ErrMissingTenant) {
		t.Error("expected ErrMissingTenant")
	}

	in = &RunInput{TenantID: "t1"}
	if !errors.Is(in.Validate(), ErrMissingProject) {
		t.Error("expected ErrMissingProject")
	}
}

func TestRunInput_Seed(t *testing.T) {
	in := &RunInput{
		TenantID:  "t1",
		ProjectID: "p1",
		UserID:    "u1",
		Payload:   map[string]any{"n": 5},
	}

	seed := in.Seed()

	if seed["n"] != 5 {
		t.Error("seed should carry payload fields")
	}
	if seed[KeyTenantID] != "t1" || seed[KeyProjectID] != "p1" || seed[KeyUserID] != "u1" {
		t.Error("seed should carry identity fields")
	}

	// Seed is a copy: mutating it must not leak back into the input
	seed["n"] = 100
	if in.Payload["n"] != 5 {
		t.Error("seed mutation leaked into input payload")
	}
}

func TestRunInput_Seed_NoUser(t *testing.T) {
	in := &RunInput{TenantID: "t1", ProjectID: "p1"}
	seed := in.Seed()

	if _, exists := seed[KeyUserID]; exists {
		t.Error("userId should be absent when not provided")
	}
}

// --- CopyMap Tests ---

func TestCopyMap_Deep(t *testing.T) {
	src := map[string]any{
		"scalar": "value",
		"nested": map[string]any{"inner": 1},
		"list":   []any{map[string]any{"x": true}},
	}

	dst := CopyMap(src)

	dst["nested"].(map[string]any)["inner"] = 99
	dst["list"].([]any)[0].(map[string]any)["x"] = false

	if src["nested"].(map[string]any)["inner"] != 1 {
		t.Error("nested map mutation leaked into source")
	}
	if src["list"].([]any)[0].(map[string]any)["x"] != true {
		t.Error("nested slice mutation leaked into source")
	}
}

func TestCopyMap_Nil(t *testing.T) {
	if CopyMap(nil) != nil {
		t.Error("copy of nil should be nil")
	}
}

func TestMergeMaps(t *testing.T) {
	merged := MergeMaps(
		map[string]any{"a": 1, "b": 1},
		map[string]any{"b": 2, "c": 2},
	)

	if merged["a"] != 1 || merged["b"] != 2 || merged["c"] != 2 {
		t.Errorf("unexpected merge result: %v", merged)
	}
}
