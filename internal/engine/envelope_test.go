package engine

import (
	"encoding/json"
	"testing"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
)

func TestBuildMetadata(t *testing.T) {
	results := map[string]domain.TaskResult{
		"a": {Metadata: domain.TaskMeta{Status: domain.StatusCompleted}},
	}

	meta := buildMetadata("pipeline", domain.RunKindTrack, []string{"a", "b", "c"}, results)

	if meta.Name != "pipeline" || meta.Kind != domain.RunKindTrack {
		t.Errorf("unexpected metadata identity: %+v", meta)
	}
	if meta.BranchCount != 3 {
		t.Errorf("branch count should cover all defined tasks, got %d", meta.BranchCount)
	}
	if len(meta.BranchMeta) != 1 {
		t.Errorf("branch meta should cover only settled tasks, got %d", len(meta.BranchMeta))
	}
	if meta.BranchMeta["a"].Status != domain.StatusCompleted {
		t.Error("branch meta should carry the recorded status")
	}
}

func TestBuildTrackEnvelope_JSONShape(t *testing.T) {
	def, _ := domain.NewTrack(domain.TrackConfig{
		Name:  "t",
		Tasks: []domain.TaskRef{{ID: "a"}},
	})
	in := &domain.RunInput{
		TenantID:  "t1",
		ProjectID: "p1",
		TrampData: map[string]any{"k": "v"},
	}

	success := buildTrackEnvelope(def, "run-1", in, map[string]any{}, map[string]domain.TaskResult{}, map[string]any{}, "")
	failure := buildTrackEnvelope(def, "run-2", in, map[string]any{}, map[string]domain.TaskResult{}, nil, "Task a failed: boom")

	topKeys := func(env *domain.Envelope) map[string]bool {
		data, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		keys := make(map[string]bool, len(m))
		for k := range m {
			keys[k] = true
		}
		return keys
	}

	successKeys := topKeys(success)
	failureKeys := topKeys(failure)

	for key := range successKeys {
		if !failureKeys[key] {
			t.Errorf("failure envelope missing top-level key %q", key)
		}
	}
	for key := range failureKeys {
		if !successKeys[key] {
			t.Errorf("success envelope has extra top-level key %q", key)
		}
	}

	if !success.Job.Success || success.Job.Error != "" {
		t.Error("success job must have no error")
	}
	if failure.Job.Success || failure.Job.Error == "" {
		t.Error("failure job must carry an error")
	}
}

func TestBuildOrchestratorEnvelope_PartialResults(t *testing.T) {
	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name: "o",
		Branches: []domain.Branch{
			{Task: &domain.TaskRef{ID: "good"}},
			{Task: &domain.TaskRef{ID: "bad"}},
		},
	})
	in := &domain.RunInput{TenantID: "t1", ProjectID: "p1"}

	branchResults := map[string]domain.TaskResult{
		"good": {
			Results:  map[string]any{"v": 1},
			Metadata: domain.TaskMeta{Status: domain.StatusCompleted},
		},
		"bad": {
			Metadata: domain.TaskMeta{Status: domain.StatusFailed, Error: "boom"},
		},
	}

	env := buildOrchestratorEnvelope(def, "run-1", in,
		map[string]any{"good": map[string]any{"v": 1}}, branchResults, "bad: boom")

	if env.Job.Success {
		t.Fatal("expected failure envelope")
	}

	// Successful sibling results survive into the failure envelope
	branches := env.Results["tracks"].(map[string]domain.TaskResult)
	if branches["good"].Results["v"] != 1 {
		t.Error("successful branch results must be preserved on failure")
	}
	if env.Metadata.BranchMeta["bad"].Error != "boom" {
		t.Error("failed branch metadata must carry its error")
	}
}
