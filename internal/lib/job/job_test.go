package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type mockMailer struct {
	SendParcelCreatedEmailFunc func(ctx context.Context, to, parcelID, title string) error
}

func (m *mockMailer) SendParcelCreatedEmail(ctx context.Context, to, parcelID, title string) error {
	return m.SendParcelCreatedEmailFunc(ctx, to, parcelID, title)
}

func newTestJobService(mailer ParcelMailer) *JobService {
	log := zerolog.Nop()
	return &JobService{mailer: mailer, logger: &log}
}

func TestNewParcelCreatedTask(t *testing.T) {
	task, err := NewParcelCreatedTask("a@x.com", "64b7f0c2a1b2c3d4e5f60718", "Box")
	if err != nil {
		t.Fatalf("NewParcelCreatedTask() error = %v", err)
	}
	if task.Type() != TaskParcelCreated {
		t.Errorf("Type() = %q", task.Type())
	}

	var p ParcelCreatedPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.To != "a@x.com" || p.ParcelID != "64b7f0c2a1b2c3d4e5f60718" || p.Title != "Box" {
		t.Errorf("payload = %+v", p)
	}
}

func TestHandleParcelCreatedTask(t *testing.T) {
	var gotTo, gotID string
	svc := newTestJobService(&mockMailer{
		SendParcelCreatedEmailFunc: func(_ context.Context, to, parcelID, _ string) error {
			gotTo, gotID = to, parcelID
			return nil
		},
	})

	task, _ := NewParcelCreatedTask("a@x.com", "64b7f0c2a1b2c3d4e5f60718", "")
	if err := svc.handleParcelCreatedTask(context.Background(), task); err != nil {
		t.Fatalf("handleParcelCreatedTask() error = %v", err)
	}
	if gotTo != "a@x.com" || gotID != "64b7f0c2a1b2c3d4e5f60718" {
		t.Errorf("mailer got %q %q", gotTo, gotID)
	}
}

func TestHandleParcelCreatedTaskMailerFailure(t *testing.T) {
	boom := errors.New("resend unavailable")
	svc := newTestJobService(&mockMailer{
		SendParcelCreatedEmailFunc: func(context.Context, string, string, string) error { return boom },
	})

	task, _ := NewParcelCreatedTask("a@x.com", "id", "")
	if err := svc.handleParcelCreatedTask(context.Background(), task); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestHandleParcelCreatedTaskBadPayload(t *testing.T) {
	svc := newTestJobService(&mockMailer{
		SendParcelCreatedEmailFunc: func(context.Context, string, string, string) error {
			t.Fatal("mailer called for a bad payload")
			return nil
		},
	})

	err := svc.handleParcelCreatedTask(context.Background(), asynq.NewTask(TaskParcelCreated, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("error = %v, want SkipRetry", err)
	}
}

func TestStartRequiresHandlers(t *testing.T) {
	if err := newTestJobService(nil).Start(); err == nil {
		t.Fatal("Start() error = nil without InitHandlers")
	}
}
