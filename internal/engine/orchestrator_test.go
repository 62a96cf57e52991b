package engine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/domain"
	"github.com/Training-Layers/sequence-marketing-automation-sub000/internal/invoke"
)

func echoHandler(field, value string) invoke.Handler {
	return func(context.Context, map[string]any) (map[string]any, error) {
		return map[string]any{field: value}, nil
	}
}

// --- Success: results keyed by branch ---

func TestRunOrchestrator_Success(t *testing.T) {
	reg := invoke.NewRegistry()
	reg.Register("echoA", echoHandler("from", "A"))
	reg.Register("echoB", echoHandler("from", "B"))

	def, err := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name: "O",
		Branches: []domain.Branch{
			{Task: &domain.TaskRef{ID: "echoA"}},
			{Task: &domain.TaskRef{ID: "echoB"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, err := newTestRunner(reg).RunOrchestrator(context.Background(), def, testInput(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !env.Job.Success {
		t.Fatalf("expected success, got error: %s", env.Job.Error)
	}

	branches := taskResults(t, env, "tracks")
	if len(branches) != 2 {
		t.Fatalf("expected exactly 2 branch results, got %d", len(branches))
	}
	if branches["echoA"].Results["from"] != "A" {
		t.Errorf("unexpected echoA result: %v", branches["echoA"].Results)
	}
	if branches["echoB"].Results["from"] != "B" {
		t.Errorf("unexpected echoB result: %v", branches["echoB"].Results)
	}

	merged, _ := env.Results[domain.RunKindOrchestrator].(map[string]any)
	if len(merged) != 2 {
		t.Errorf("merged output should hold both branches, got %v", merged)
	}
}

// --- Fail-after-join: siblings are not cancelled ---

func TestRunOrchestrator_FailAfterJoin(t *testing.T) {
	reg := invoke.NewRegistry()
	var slowCompleted atomic.Bool

	reg.Register("fast-fail", func(context.Context, map[string]any) (map[string]any, error) {
		return nil, errors.New("enrichment rejected")
	})
	reg.Register("slow-ok", func(ctx context.Context, _ map[string]any) (map[string]any, error) {
		time.Sleep(80 * time.Millisecond)
		slowCompleted.Store(true)
		return map[string]any{"done": true}, nil
	})

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name: "O",
		Branches: []domain.Branch{
			{Task: &domain.TaskRef{ID: "fast-fail"}},
			{Task: &domain.TaskRef{ID: "slow-ok"}},
		},
	})

	env, err := newTestRunner(reg).RunOrchestrator(context.Background(), def, testInput(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Job.Success {
		t.Fatal("expected failure envelope")
	}

	// The slow sibling must have completed before the orchestrator returned
	if !slowCompleted.Load() {
		t.Error("slow branch must not be cancelled by the failing sibling")
	}

	if !strings.Contains(env.Job.Error, "fast-fail: enrichment rejected") {
		t.Errorf("aggregate error should carry the branch failure, got: %s", env.Job.Error)
	}

	// Partial results of the successful sibling are preserved in the envelope
	branches := taskResults(t, env, "tracks")
	if branches["slow-ok"].Results["done"] != true {
		t.Errorf("successful sibling results must survive into the failure envelope, got %v",
			branches["slow-ok"].Results)
	}
	if branches["slow-ok"].Metadata.Status != domain.StatusCompleted {
		t.Error("successful sibling metadata should be completed")
	}
	if branches["fast-fail"].Metadata.Status != domain.StatusFailed {
		t.Error("failed branch metadata should be failed")
	}
}

// --- Aggregate error collects every failed branch ---

func TestRunOrchestrator_AggregatesAllFailures(t *testing.T) {
	reg := invoke.NewRegistry()
	reg.Register("a", func(context.Context, map[string]any) (map[string]any, error) {
		return nil, errors.New("first error")
	})
	reg.Register("b", func(context.Context, map[string]any) (map[string]any, error) {
		return nil, errors.New("second error")
	})

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name: "O",
		Branches: []domain.Branch{
			{Task: &domain.TaskRef{ID: "a"}},
			{Task: &domain.TaskRef{ID: "b"}},
		},
	})

	env, err := newTestRunner(reg).RunOrchestrator(context.Background(), def, testInput(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(env.Job.Error, "a: first error") {
		t.Errorf("missing first branch error: %s", env.Job.Error)
	}
	if !strings.Contains(env.Job.Error, "b: second error") {
		t.Errorf("missing second branch error: %s", env.Job.Error)
	}
	if !strings.Contains(env.Job.Error, branchErrorSeparator) {
		t.Errorf("branch errors should be joined by separator: %s", env.Job.Error)
	}
}

// --- Track branches ---

func TestRunOrchestrator_TrackBranch(t *testing.T) {
	reg := invoke.NewRegistry()
	reg.Register("extract", func(context.Context, map[string]any) (map[string]any, error) {
		return map[string]any{"audio": "a.wav"}, nil
	})
	reg.Register("transcribe", func(_ context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"transcript": "text of " + input["audio"].(string)}, nil
	})
	reg.Register("score", echoHandler("score", "0.9"))

	track, _ := domain.NewTrack(domain.TrackConfig{
		Name:  "audio",
		Tasks: []domain.TaskRef{{ID: "extract"}, {ID: "transcribe"}},
	})

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name: "enrich",
		Branches: []domain.Branch{
			{Track: track},
			{Task: &domain.TaskRef{ID: "score"}},
		},
	})

	env, err := newTestRunner(reg).RunOrchestrator(context.Background(), def, testInput(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !env.Job.Success {
		t.Fatalf("expected success, got: %s", env.Job.Error)
	}

	branches := taskResults(t, env, "tracks")
	audio := branches["audio"]
	if audio.Results["transcript"] != "text of a.wav" {
		t.Errorf("track branch should carry the track's final output, got %v", audio.Results)
	}
	if branches["score"].Results["score"] != "0.9" {
		t.Errorf("task branch result missing, got %v", branches["score"].Results)
	}
}

func TestRunOrchestrator_TrackBranchFailure(t *testing.T) {
	reg := invoke.NewRegistry()
	reg.Register("boom", func(context.Context, map[string]any) (map[string]any, error) {
		return nil, errors.New("no audio stream")
	})

	track, _ := domain.NewTrack(domain.TrackConfig{
		Name:  "audio",
		Tasks: []domain.TaskRef{{ID: "boom"}},
	})

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name:     "enrich",
		Branches: []domain.Branch{{Track: track}},
	})

	env, err := newTestRunner(reg).RunOrchestrator(context.Background(), def, testInput(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Job.Success {
		t.Fatal("expected failure envelope")
	}
	if !strings.Contains(env.Job.Error, "audio: Task boom failed: no audio stream") {
		t.Errorf("track branch failure should be attributed to the track, got: %s", env.Job.Error)
	}
}

// --- Branch input isolation ---

func TestRunOrchestrator_BranchInputIsolation(t *testing.T) {
	reg := invoke.NewRegistry()
	reg.Register("a", echoHandler("ok", "a"))
	reg.Register("b", echoHandler("ok", "b"))

	var sawMark atomic.Bool
	var mapperCalls atomic.Int64

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name: "O",
		Branches: []domain.Branch{
			{Task: &domain.TaskRef{ID: "a"}, InputMapper: func(prev, original map[string]any) (map[string]any, error) {
				// Mutate the branch's own copy of the seed
				mapperCalls.Add(1)
				prev["mark"] = true
				return prev, nil
			}},
			{Task: &domain.TaskRef{ID: "b"}, InputMapper: func(prev, original map[string]any) (map[string]any, error) {
				mapperCalls.Add(1)
				if _, exists := prev["mark"]; exists {
					sawMark.Store(true)
				}
				return prev, nil
			}},
		},
	})

	// Run several times: goroutine interleaving should never leak the mark
	runner := newTestRunner(reg)
	const runs = 20
	for i := 0; i < runs; i++ {
		if _, err := runner.RunOrchestrator(context.Background(), def, testInput(map[string]any{"shared": 1})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := mapperCalls.Load(); got != 2*runs {
		t.Fatalf("branch mappers ran %d times, want %d", got, 2*runs)
	}
	if sawMark.Load() {
		t.Error("a branch mapper observed a sibling's mutation")
	}
}

// --- Branch mapper shapes the task input ---

func TestRunOrchestrator_BranchMapperShapesInput(t *testing.T) {
	reg := invoke.NewRegistry()
	reg.Register("scale", func(_ context.Context, input map[string]any) (map[string]any, error) {
		n, _ := input["n"].(float64)
		return map[string]any{"n": n * 2}, nil
	})

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name: "O",
		Branches: []domain.Branch{
			{Task: &domain.TaskRef{ID: "scale"}, InputMapper: func(prev, original map[string]any) (map[string]any, error) {
				n, _ := prev["n"].(float64)
				return map[string]any{"n": n + 1}, nil
			}},
		},
	})

	env, err := newTestRunner(reg).RunOrchestrator(context.Background(), def, testInput(map[string]any{"n": float64(4)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !env.Job.Success {
		t.Fatalf("expected success, got error: %s", env.Job.Error)
	}

	// (4+1)*2: задача видит выход mapper'а ветки, а не сырой seed
	branches := taskResults(t, env, "tracks")
	if branches["scale"].Results["n"] != float64(10) {
		t.Errorf("n = %v, want 10", branches["scale"].Results["n"])
	}
}

// --- Branch mapper failure ---

func TestRunOrchestrator_BranchMapperFailure(t *testing.T) {
	reg := invoke.NewRegistry()
	reg.Register("a", echoHandler("ok", "a"))

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name: "O",
		Branches: []domain.Branch{
			{Task: &domain.TaskRef{ID: "a"}, InputMapper: func(prev, original map[string]any) (map[string]any, error) {
				return nil, errors.New("cannot shape input")
			}},
		},
	})

	env, err := newTestRunner(reg).RunOrchestrator(context.Background(), def, testInput(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Job.Success {
		t.Fatal("expected failure envelope")
	}
	if !strings.Contains(env.Job.Error, "a:") || !strings.Contains(env.Job.Error, "cannot shape input") {
		t.Errorf("mapper failure should be attributed to the branch, got: %s", env.Job.Error)
	}
}

// --- Tramp data on the failure path ---

func TestRunOrchestrator_TrampDataPreserved(t *testing.T) {
	tramp := map[string]any{"correlation": "abc"}

	reg := invoke.NewRegistry()
	reg.Register("fails", func(context.Context, map[string]any) (map[string]any, error) {
		return nil, errors.New("boom")
	})

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name:     "O",
		Branches: []domain.Branch{{Task: &domain.TaskRef{ID: "fails"}}},
	})

	in := testInput(nil)
	in.TrampData = tramp

	env, err := newTestRunner(reg).RunOrchestrator(context.Background(), def, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(env.TrampData, tramp) {
		t.Errorf("tramp data must survive the failure path, got %v", env.TrampData)
	}
}

// --- Preconditions ---

func TestRunOrchestrator_Preconditions(t *testing.T) {
	runner := newTestRunner(invoke.NewRegistry())

	if _, err := runner.RunOrchestrator(context.Background(), nil, testInput(nil)); !errors.Is(err, ErrNilDefinition) {
		t.Errorf("expected ErrNilDefinition, got %v", err)
	}

	def, _ := domain.NewOrchestrator(domain.OrchestratorConfig{
		Name:     "O",
		Branches: []domain.Branch{{Task: &domain.TaskRef{ID: "a"}}},
	})

	if _, err := runner.RunOrchestrator(context.Background(), def, &domain.RunInput{TenantID: "t1"}); !errors.Is(err, domain.ErrMissingProject) {
		t.Errorf("expected ErrMissingProject, got %v", err)
	}
}
