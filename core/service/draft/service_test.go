package draft

import (
	"context"
	"errors"
	"testing"

	"drafly_server/core/domain"
	"drafly_server/core/port/out"
	"drafly_server/pkg/apperr"
)

type fakeDraftRepo struct {
	drafts map[int64]*domain.Draft
	nextID int64

	statusCalls int
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[int64]*domain.Draft)}
}

func (f *fakeDraftRepo) Create(_ context.Context, draft *domain.Draft) error {
	f.nextID++
	draft.ID = f.nextID
	cp := *draft
	f.drafts[draft.ID] = &cp
	return nil
}

func (f *fakeDraftRepo) GetByID(_ context.Context, id int64, ownerEmail string) (*domain.Draft, error) {
	d, ok := f.drafts[id]
	if !ok || d.OwnerEmail != ownerEmail {
		return nil, out.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDraftRepo) ListByOwner(_ context.Context, ownerEmail string) ([]*domain.Draft, error) {
	var result []*domain.Draft
	for _, d := range f.drafts {
		if d.OwnerEmail == ownerEmail {
			cp := *d
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeDraftRepo) UpdateContent(_ context.Context, id int64, ownerEmail, content string) error {
	d, ok := f.drafts[id]
	if !ok || d.OwnerEmail != ownerEmail {
		return out.ErrNotFound
	}
	d.Content = content
	return nil
}

func (f *fakeDraftRepo) UpdateStatus(_ context.Context, id int64, ownerEmail string, status domain.DraftStatus, sentGmailID string) error {
	f.statusCalls++
	d, ok := f.drafts[id]
	if !ok || d.OwnerEmail != ownerEmail {
		return out.ErrNotFound
	}
	d.Status = status
	if sentGmailID != "" {
		d.SentGmailID = sentGmailID
	}
	return nil
}

type fakeEmailRepo struct {
	emails map[int64]*domain.Email
}

func (f *fakeEmailRepo) Upsert(_ context.Context, _ *domain.Email) error { return nil }

func (f *fakeEmailRepo) GetByID(_ context.Context, id int64, ownerEmail string) (*domain.Email, error) {
	e, ok := f.emails[id]
	if !ok || e.OwnerEmail != ownerEmail {
		return nil, out.ErrNotFound
	}
	return e, nil
}

func (f *fakeEmailRepo) ListRecent(_ context.Context, _ string, _ int) ([]*domain.Email, error) {
	return nil, nil
}

type fakeGenerator struct {
	reply string
	err   error

	gotBody    string
	gotSender  string
	gotSubject string
	gotTone    string
}

func (f *fakeGenerator) GenerateReply(_ context.Context, body, sender, subject, tone string) (string, error) {
	f.gotBody = body
	f.gotSender = sender
	f.gotSubject = subject
	f.gotTone = tone
	return f.reply, f.err
}

type fakeDispatcher struct {
	sentID string
	err    error

	gotTo       string
	gotSubject  string
	gotThreadID string
	gotBody     string
	calls       int
}

func (f *fakeDispatcher) SendReply(_ context.Context, _, to, subject, threadID, body string) (string, error) {
	f.calls++
	f.gotTo = to
	f.gotSubject = subject
	f.gotThreadID = threadID
	f.gotBody = body
	if f.err != nil {
		return "", f.err
	}
	return f.sentID, nil
}

const owner = "me@example.com"

func testEmail() *domain.Email {
	return &domain.Email{
		ID:         7,
		GmailID:    "g7",
		ThreadID:   "thread-7",
		OwnerEmail: owner,
		Sender:     "alice@example.com",
		Subject:    "Budget review",
		BodyText:   "Can we meet Thursday?",
	}
}

func newTestService(gen *fakeGenerator, disp *fakeDispatcher) (*Service, *fakeDraftRepo) {
	drafts := newFakeDraftRepo()
	emails := &fakeEmailRepo{emails: map[int64]*domain.Email{7: testEmail()}}
	return NewService(drafts, emails, gen, disp), drafts
}

func TestGenerate(t *testing.T) {
	gen := &fakeGenerator{reply: "Thursday works for me."}
	svc, repo := newTestService(gen, &fakeDispatcher{})

	draft, err := svc.Generate(context.Background(), owner, 7, "formal")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if draft.ID == 0 {
		t.Error("draft id not assigned")
	}
	if draft.Content != "Thursday works for me." {
		t.Errorf("content = %q", draft.Content)
	}
	if draft.Status != domain.DraftStatusDraft {
		t.Errorf("status = %q", draft.Status)
	}
	if draft.Tone != "formal" {
		t.Errorf("tone = %q", draft.Tone)
	}
	if gen.gotBody != "Can we meet Thursday?" || gen.gotSender != "alice@example.com" || gen.gotTone != "formal" {
		t.Errorf("generator got body=%q sender=%q tone=%q", gen.gotBody, gen.gotSender, gen.gotTone)
	}
	if repo.drafts[draft.ID] == nil {
		t.Error("draft not persisted")
	}
}

func TestGenerateDefaultTone(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc, _ := newTestService(gen, &fakeDispatcher{})

	draft, err := svc.Generate(context.Background(), owner, 7, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if draft.Tone != "friendly" {
		t.Errorf("tone = %q, want friendly", draft.Tone)
	}
	if gen.gotTone != "friendly" {
		t.Errorf("generator tone = %q", gen.gotTone)
	}
}

func TestGeneratePlaceholderOnFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"generator error", &fakeGenerator{err: errors.New("llm unavailable")}},
		{"empty completion", &fakeGenerator{reply: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(tt.gen, &fakeDispatcher{})

			draft, err := svc.Generate(context.Background(), owner, 7, "")
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if draft.Content != domain.PlaceholderContent {
				t.Errorf("content = %q, want placeholder", draft.Content)
			}
			if draft.Status != domain.DraftStatusDraft {
				t.Errorf("status = %q", draft.Status)
			}
		})
	}
}

func TestGenerateUnknownEmail(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{reply: "ok"}, &fakeDispatcher{})

	_, err := svc.Generate(context.Background(), owner, 999, "")
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateForeignEmail(t *testing.T) {
	svc, _ := newTestService(&fakeGenerator{reply: "ok"}, &fakeDispatcher{})

	_, err := svc.Generate(context.Background(), "intruder@example.com", 7, "")
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestEdit(t *testing.T) {
	svc, repo := newTestService(&fakeGenerator{reply: "first pass"}, &fakeDispatcher{})
	draft, _ := svc.Generate(context.Background(), owner, 7, "")

	if err := svc.Edit(context.Background(), owner, draft.ID, "second pass"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if repo.drafts[draft.ID].Content != "second pass" {
		t.Errorf("content = %q", repo.drafts[draft.ID].Content)
	}

	if err := svc.Edit(context.Background(), "intruder@example.com", draft.ID, "x"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Errorf("foreign edit err = %v", err)
	}
}

func TestApprove(t *testing.T) {
	svc, repo := newTestService(&fakeGenerator{reply: "ok"}, &fakeDispatcher{})
	draft, _ := svc.Generate(context.Background(), owner, 7, "")

	if err := svc.Approve(context.Background(), owner, draft.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if repo.drafts[draft.ID].Status != domain.DraftStatusApproved {
		t.Errorf("status = %q", repo.drafts[draft.ID].Status)
	}

	// Re-approval is a no-op, not an error and not another write.
	writes := repo.statusCalls
	if err := svc.Approve(context.Background(), owner, draft.ID); err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if repo.statusCalls != writes {
		t.Errorf("re-approval wrote status again")
	}
}

func TestApproveSentDraft(t *testing.T) {
	svc, repo := newTestService(&fakeGenerator{reply: "ok"}, &fakeDispatcher{sentID: "s1"})
	draft, _ := svc.Generate(context.Background(), owner, 7, "")
	repo.drafts[draft.ID].Status = domain.DraftStatusSent

	err := svc.Approve(context.Background(), owner, draft.ID)
	if !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("err = %v", err)
	}
}

func TestSend(t *testing.T) {
	disp := &fakeDispatcher{sentID: "provider-99"}
	svc, repo := newTestService(&fakeGenerator{reply: "Thursday works."}, disp)
	draft, _ := svc.Generate(context.Background(), owner, 7, "")
	if err := svc.Approve(context.Background(), owner, draft.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	sentID, err := svc.Send(context.Background(), owner, draft.ID)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sentID != "provider-99" {
		t.Errorf("sentID = %q", sentID)
	}
	stored := repo.drafts[draft.ID]
	if stored.Status != domain.DraftStatusSent {
		t.Errorf("status = %q", stored.Status)
	}
	if stored.SentGmailID != "provider-99" {
		t.Errorf("sent gmail id = %q", stored.SentGmailID)
	}
	if disp.gotTo != "alice@example.com" || disp.gotSubject != "Budget review" || disp.gotThreadID != "thread-7" {
		t.Errorf("dispatcher got to=%q subject=%q thread=%q", disp.gotTo, disp.gotSubject, disp.gotThreadID)
	}
	if disp.gotBody != "Thursday works." {
		t.Errorf("dispatcher body = %q", disp.gotBody)
	}
}

func TestSendUnapprovedDraft(t *testing.T) {
	disp := &fakeDispatcher{sentID: "s1"}
	svc, _ := newTestService(&fakeGenerator{reply: "ok"}, disp)
	draft, _ := svc.Generate(context.Background(), owner, 7, "")

	_, err := svc.Send(context.Background(), owner, draft.ID)
	if !apperr.IsCode(err, apperr.CodeConflict) {
		t.Fatalf("err = %v", err)
	}
	if disp.calls != 0 {
		t.Errorf("dispatcher called for unapproved draft")
	}
}

func TestSendDispatchFailureLeavesApproved(t *testing.T) {
	disp := &fakeDispatcher{err: apperr.SendFailed(errors.New("gmail api status 503"))}
	svc, repo := newTestService(&fakeGenerator{reply: "ok"}, disp)
	draft, _ := svc.Generate(context.Background(), owner, 7, "")
	if err := svc.Approve(context.Background(), owner, draft.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	_, err := svc.Send(context.Background(), owner, draft.ID)
	if !apperr.IsCode(err, apperr.CodeSendFailed) {
		t.Fatalf("err = %v", err)
	}
	if repo.drafts[draft.ID].Status != domain.DraftStatusApproved {
		t.Errorf("status = %q, want approved for retry", repo.drafts[draft.ID].Status)
	}
}
