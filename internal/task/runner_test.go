package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/summarizer/api/internal/config"
	"github.com/summarizer/api/internal/model"
)

// fakeCommand simulates the external whisper tool
type fakeCommand struct {
	result CommandResult
	err    error
	onRun  func(ctx context.Context, name string, args []string)
}

func (f *fakeCommand) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	if f.onRun != nil {
		f.onRun(ctx, name, args)
	}
	return f.result, f.err
}

// blockingCommand waits for release (or ctx) before returning
type blockingCommand struct {
	started chan string
	release chan struct{}
}

func (b *blockingCommand) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	b.started <- args[0]
	select {
	case <-b.release:
		return CommandResult{}, nil
	case <-ctx.Done():
		return CommandResult{ExitCode: -1}, ctx.Err()
	}
}

// recordingNotifier captures notification calls
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) VttFinished(user, audio string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, user+"/"+audio)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func newTestRunner(reg *Registry, notifier Notifier, cmd CommandRunner) *Runner {
	r := NewRunner(reg, notifier, config.WhisperConfig{Bin: "whisper", Model: "medium"})
	r.SetCommandRunner(cmd)
	return r
}

func TestRunSuccess(t *testing.T) {
	reg := NewRegistry()
	notifier := &recordingNotifier{}

	var gotName string
	var gotArgs []string
	cmd := &fakeCommand{
		onRun: func(ctx context.Context, name string, args []string) {
			gotName = name
			gotArgs = args
			// While the tool runs the job must report "processing"
			job, ok := reg.Get("/data/alice/lecture.mp3")
			if !ok || job.Status != model.JobStatusProcessing {
				t.Errorf("status during run = %+v, want processing", job)
			}
		},
	}

	runner := newTestRunner(reg, notifier, cmd)

	var transitions []model.JobStatus
	runner.SetObserver(func(key string, job model.Job) {
		transitions = append(transitions, job.Status)
	})

	runner.Run(context.Background(), "/data/alice/lecture.mp3", "lecture.mp3", "alice")

	if gotName != "whisper" {
		t.Errorf("command = %q, want whisper", gotName)
	}
	wantArgs := []string{"/data/alice/lecture.mp3", "--model", "medium", "--output_format", "vtt", "--output_dir", "/data/alice"}
	if strings.Join(gotArgs, " ") != strings.Join(wantArgs, " ") {
		t.Errorf("args = %v, want %v", gotArgs, wantArgs)
	}

	want := []model.JobStatus{model.JobStatusStarting, model.JobStatusProcessing, model.JobStatusDone}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %q, want %q", i, transitions[i], want[i])
		}
	}

	if calls := notifier.all(); len(calls) != 1 || calls[0] != "alice/lecture.mp3" {
		t.Errorf("notifications = %v, want exactly one alice/lecture.mp3", calls)
	}

	if _, ok := reg.Get("/data/alice/lecture.mp3"); ok {
		t.Error("record should be removed after completion")
	}
}

func TestRunToolFailure(t *testing.T) {
	reg := NewRegistry()
	notifier := &recordingNotifier{}
	cmd := &fakeCommand{
		result: CommandResult{ExitCode: 1, Stderr: "model not found\n"},
		err:    errors.New("exit status 1"),
	}

	runner := newTestRunner(reg, notifier, cmd)

	// The production query path sees "not found" immediately after the task
	// ends, so the terminal error state is asserted through the observer.
	var errJob *model.Job
	runner.SetObserver(func(key string, job model.Job) {
		if job.Status == model.JobStatusError {
			j := job
			errJob = &j
		}
	})

	runner.Run(context.Background(), "/data/bob/talk.mp3", "talk.mp3", "bob")

	if errJob == nil {
		t.Fatal("expected an error transition")
	}
	if errJob.Message != "model not found" {
		t.Errorf("message = %q, want %q", errJob.Message, "model not found")
	}

	if calls := notifier.all(); len(calls) != 0 {
		t.Errorf("no notification expected on failure, got %v", calls)
	}

	if _, ok := reg.Get("/data/bob/talk.mp3"); ok {
		t.Error("record should be removed after failure")
	}
}

func TestRunFaultWithoutStderrStillCleansUp(t *testing.T) {
	reg := NewRegistry()
	cmd := &fakeCommand{
		result: CommandResult{ExitCode: -1},
		err:    errors.New("fork/exec whisper: no such file or directory"),
	}

	runner := newTestRunner(reg, nil, cmd)

	var errJob *model.Job
	runner.SetObserver(func(key string, job model.Job) {
		if job.Status == model.JobStatusError {
			j := job
			errJob = &j
		}
	})

	runner.Run(context.Background(), "/data/carol/memo.mp3", "memo.mp3", "carol")

	if errJob == nil || !strings.Contains(errJob.Message, "no such file") {
		t.Errorf("errJob = %+v, want fault text as message", errJob)
	}
	if _, ok := reg.Get("/data/carol/memo.mp3"); ok {
		t.Error("record should be removed after fault")
	}
}

func TestRunTimeoutKillsHangingTool(t *testing.T) {
	reg := NewRegistry()
	cmd := &blockingCommand{
		started: make(chan string, 1),
		release: make(chan struct{}),
	}

	runner := NewRunner(reg, nil, config.WhisperConfig{Bin: "whisper", Model: "medium", Timeout: 1})
	runner.SetCommandRunner(cmd)

	done := make(chan struct{})
	go func() {
		runner.Run(context.Background(), "/data/dave/long.mp3", "long.mp3", "dave")
		close(done)
	}()

	<-cmd.started
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not return after timeout")
	}

	if _, ok := reg.Get("/data/dave/long.mp3"); ok {
		t.Error("record should be removed after timeout")
	}
}

func TestRunConcurrentJobsAreIndependent(t *testing.T) {
	reg := NewRegistry()
	const n = 5
	cmd := &blockingCommand{
		started: make(chan string, n),
		release: make(chan struct{}),
	}

	runner := newTestRunner(reg, &recordingNotifier{}, cmd)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("/data/user%d/audio.mp3", i)
			runner.Run(context.Background(), path, "audio.mp3", fmt.Sprintf("user%d", i))
		}(i)
	}

	// Wait until every job has reached its tool invocation
	for i := 0; i < n; i++ {
		<-cmd.started
	}

	snap := reg.Snapshot()
	if len(snap) != n {
		t.Fatalf("in-flight jobs = %d, want %d", len(snap), n)
	}
	for key, job := range snap {
		if job.Status != model.JobStatusProcessing {
			t.Errorf("%s: status = %q, want processing", key, job.Status)
		}
	}

	close(cmd.release)
	wg.Wait()

	if reg.Len() != 0 {
		t.Fatalf("registry should be empty after all jobs finish, has %d", reg.Len())
	}
}
