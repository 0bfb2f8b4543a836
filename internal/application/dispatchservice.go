package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
	"github.com/ericfisherdev/signdispatch/internal/metrics"
)

var (
	// ErrNoRecipients is returned when the recipient table has no rows.
	ErrNoRecipients = errors.New("recipient list is empty")

	// ErrEmptySendPlan is returned when the send-plan table has no rows.
	ErrEmptySendPlan = errors.New("send plan is empty")
)

// RunReport summarizes a dispatch run.
type RunReport struct {
	RunID        string
	Total        int // Recipient rows in the table.
	Attempted    int // Recipients charged to a credential.
	Sent         int
	UploadFailed int
	FieldsFailed int
	InviteFailed int
	Unattempted  int  // Recipients left untouched after pool exhaustion.
	Exhausted    bool // The run stopped early because no credential had quota left.
	Requests     []model.SigningRequest
}

// DispatchService drives one signing workflow per recipient: upload the
// document, place the signature field, send the invite. A failing step skips
// only the current recipient; the run stops early only when the credential
// pool is exhausted.
type DispatchService struct {
	client      driven.SigningClient
	recipients  driven.RecipientStore
	plans       driven.SendPlanStore
	attachments driven.AttachmentStore
	metrics     metrics.Recorder
	logger      *slog.Logger
	newRunID    func() string
}

// NewDispatchService creates a DispatchService. A nil recorder disables metrics.
func NewDispatchService(
	client driven.SigningClient,
	recipients driven.RecipientStore,
	plans driven.SendPlanStore,
	attachments driven.AttachmentStore,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *DispatchService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &DispatchService{
		client:      client,
		recipients:  recipients,
		plans:       plans,
		attachments: attachments,
		metrics:     recorder,
		logger:      logger,
		newRunID:    func() string { return uuid.New().String() },
	}
}

// Run dispatches every recipient against pool. It returns an error only for
// run-level failures detected before any credential is touched: unreadable or
// empty tables and a missing or empty attachment. Per-recipient failures and
// pool exhaustion are reported through the RunReport and the log.
//
// ctx is handed to the transport only. Recipients are processed strictly one
// at a time and the loop itself has no cancellation point.
func (s *DispatchService) Run(ctx context.Context, pool *CredentialPool) (*RunReport, error) {
	report := &RunReport{RunID: s.newRunID()}
	log := s.logger.With("run_id", report.RunID)

	recipients, plan, doc, err := s.prepare(ctx)
	if err != nil {
		log.Error("run aborted", "error", err)
		return report, err
	}
	report.Total = len(recipients)

	// The sender address is taken from the first recipient row, not from the
	// credential's account.
	senderEmail := recipients[0].Email

	log.Info("dispatch started",
		"recipients", len(recipients),
		"credentials", pool.Len(),
		"quota", pool.Remaining(),
		"attachment", doc.Path,
	)

	for i, rcpt := range recipients {
		cred := pool.Acquire()
		if cred == nil {
			report.Exhausted = true
			report.Unattempted = len(recipients) - i
			s.metrics.RecordPoolExhausted()
			log.Warn("all tokens exhausted, stopping", "remaining_recipients", report.Unattempted)
			break
		}
		pool.Consume(cred)
		s.metrics.RecordCredentialConsumed()
		report.Attempted++

		req := s.dispatchOne(ctx, log, i, rcpt, cred, senderEmail, plan, doc)
		report.Requests = append(report.Requests, req)
		s.metrics.RecordOutcome(req.Outcome)

		switch req.Outcome {
		case model.OutcomeSent:
			report.Sent++
		case model.OutcomeUploadFailed:
			report.UploadFailed++
		case model.OutcomeFieldsFailed:
			report.FieldsFailed++
		case model.OutcomeInviteFailed:
			report.InviteFailed++
		}
	}

	log.Info("dispatch finished",
		"attempted", report.Attempted,
		"sent", report.Sent,
		"failed", report.Attempted-report.Sent,
		"unattempted", report.Unattempted,
		"quota_left", pool.Remaining(),
	)

	return report, nil
}

// prepare reads the run inputs and checks the run-level preconditions.
func (s *DispatchService) prepare(ctx context.Context) ([]model.Recipient, model.SendPlan, *model.Attachment, error) {
	recipients, err := s.recipients.LoadRecipients(ctx)
	if err != nil {
		return nil, model.SendPlan{}, nil, fmt.Errorf("read recipients: %w", err)
	}
	plans, err := s.plans.LoadSendPlans(ctx)
	if err != nil {
		return nil, model.SendPlan{}, nil, fmt.Errorf("read send plan: %w", err)
	}

	if len(recipients) == 0 {
		return nil, model.SendPlan{}, nil, ErrNoRecipients
	}
	if len(plans) == 0 {
		return nil, model.SendPlan{}, nil, ErrEmptySendPlan
	}

	// Only the first send-plan row is active.
	plan := plans[0]

	doc, err := s.attachments.ReadAttachment(ctx, plan)
	if err != nil {
		return nil, model.SendPlan{}, nil, err
	}

	return recipients, plan, doc, nil
}

// dispatchOne runs upload, field placement and invite for a single recipient.
// The first failing step ends the recipient's workflow; nothing already
// created remotely is rolled back.
func (s *DispatchService) dispatchOne(
	ctx context.Context,
	log *slog.Logger,
	index int,
	rcpt model.Recipient,
	cred *model.Credential,
	senderEmail string,
	plan model.SendPlan,
	doc *model.Attachment,
) model.SigningRequest {
	req := model.SigningRequest{
		Index:      index,
		Recipient:  rcpt,
		TokenEmail: cred.Email,
		Role:       model.RoleName(index),
	}
	log = log.With("recipient", rcpt.Email, "row", index+1)

	start := time.Now()
	docID, err := s.client.Upload(ctx, cred.Token, *doc)
	s.metrics.RecordStepLatency(model.StepUpload, time.Since(start))
	if err == nil && docID == "" {
		err = &driven.RemoteError{Kind: driven.ErrUpload, Err: errors.New("response has no document id")}
	}
	if err != nil {
		log.Error("upload failed", "token", cred.TokenPrefix(), "error", err)
		req.Outcome, req.Err = model.OutcomeUploadFailed, err
		return req
	}
	req.DocumentID = docID
	log.Info("upload successful", "doc_id", docID)

	roles := []model.Role{{Name: req.Role, SigningOrder: model.DefaultSigningOrder}}
	fields := []model.Field{model.SignatureField(req.Role)}

	start = time.Now()
	err = s.client.SetFields(ctx, cred.Token, docID, roles, fields)
	s.metrics.RecordStepLatency(model.StepFields, time.Since(start))
	if err != nil {
		log.Error("failed to set fields", "doc_id", docID, "error", err)
		req.Outcome, req.Err = model.OutcomeFieldsFailed, err
		return req
	}

	invite := model.Invite{
		To: []model.InviteRecipient{{
			Email: rcpt.Email,
			Role:  req.Role,
			Order: model.DefaultSigningOrder,
		}},
		From:    senderEmail,
		Subject: plan.Subject,
		Message: plan.Body,
	}

	start = time.Now()
	err = s.client.Invite(ctx, cred.Token, docID, invite)
	s.metrics.RecordStepLatency(model.StepInvite, time.Since(start))
	if err != nil {
		log.Error("failed to send invite", "doc_id", docID, "error", err)
		req.Outcome, req.Err = model.OutcomeInviteFailed, err
		return req
	}

	log.Info("sent", "doc_id", docID)
	req.Outcome = model.OutcomeSent
	return req
}
