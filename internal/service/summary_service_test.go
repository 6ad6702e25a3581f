package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"employee-review/internal/domain"
	"employee-review/internal/llm"
	"employee-review/internal/repository"
)

const consolidatedJSON = `{"Коммуникация":{"score":4,"description":"ясно излагает"},"Вывод":{"score":3.5,"description":"надежный сотрудник"}}`

func newSummaryFixture(t *testing.T, client llm.LLMClient, weights ...float64) (*SummaryService, *repository.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	if err := store.Employees().EnsureExists(ctx, 7); err != nil {
		t.Fatalf("ensure employee: %v", err)
	}
	if _, err := store.Aspects().Create(ctx, "Коммуникация"); err != nil {
		t.Fatalf("create aspect: %v", err)
	}
	for i, w := range weights {
		fb := domain.Feedback{
			Text:       strings.Repeat("хорошо ", i+1),
			EmployeeID: 7,
			ReviewerID: int64(100 + i),
			Weight:     w,
		}
		if _, err := store.Feedback().Create(ctx, fb); err != nil {
			t.Fatalf("create feedback: %v", err)
		}
	}
	svc := NewSummaryService(client, store.Employees(), store.Aspects(), store.Feedback(), store.Summaries(), NewLocalRunLocker(), 0, zap.NewNop())
	return svc, store
}

func TestRunSummary_SingleBatchThreeCalls(t *testing.T) {
	client := &llm.MockClient{Script: []llm.MockReply{
		{Generation: llm.Raw("  сводка по лоту  ")},
		{Generation: llm.Structured(json.RawMessage(consolidatedJSON))},
		{Generation: llm.Structured(json.RawMessage(`{"psychotype":"Аналитик","psychotype_description":"Вдумчивый"}`))},
	}}
	svc, store := newSummaryFixture(t, client, 1.0, 0.5, 0.0)

	res, err := svc.RunSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("run summary: %v", err)
	}
	if client.Calls() != 3 {
		t.Fatalf("expected 3 llm calls, got %d", client.Calls())
	}
	if res.Batches != 1 || res.RunID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}

	prompts := client.Prompts()
	for _, want := range []string{"(вес: 1.0)", "(вес: 0.5)", "(вес: 0.0)"} {
		if !strings.Contains(prompts[0], want) {
			t.Fatalf("batch prompt missing %q", want)
		}
	}
	if !strings.Contains(prompts[1], "сводка по лоту") {
		t.Fatalf("consolidation prompt must carry the batch summary")
	}
	if !strings.Contains(prompts[2], `"Коммуникация":{"score":4`) {
		t.Fatalf("psychotype prompt must carry the consolidated summary: %s", prompts[2])
	}

	ctx := context.Background()
	aspects, _ := store.Summaries().ListAspectSummaries(ctx, 7)
	if len(aspects) != 1 || aspects[0].AspectName != "Коммуникация" || aspects[0].Score != 4 {
		t.Fatalf("unexpected aspect summaries: %+v", aspects)
	}
	general, _ := store.Summaries().ListGeneralSummaries(ctx, 7)
	if len(general) != 1 || general[0].Score == nil || *general[0].Score != 3.5 || general[0].Text != "надежный сотрудник" {
		t.Fatalf("unexpected general summaries: %+v", general)
	}
	emp, _ := store.Employees().GetByID(ctx, 7)
	if emp.Psychotype == nil || *emp.Psychotype != "Аналитик" {
		t.Fatalf("expected psychotype to be stored, got %+v", emp)
	}
}

func TestRunSummary_NoFeedback(t *testing.T) {
	client := &llm.MockClient{Response: llm.Raw("unused")}
	svc, store := newSummaryFixture(t, client)

	_, err := svc.RunSummary(context.Background(), 7)
	if !errors.Is(err, ErrNoFeedback) {
		t.Fatalf("expected ErrNoFeedback, got %v", err)
	}
	if stage, ok := StageOf(err); !ok || stage != StageBatching {
		t.Fatalf("expected batching stage, got %v", stage)
	}
	if client.Calls() != 0 || store.SavedRuns() != 0 {
		t.Fatalf("expected no llm calls and no writes")
	}
}

func TestRunSummary_UnknownEmployee(t *testing.T) {
	svc, _ := newSummaryFixture(t, &llm.MockClient{})

	_, err := svc.RunSummary(context.Background(), 999)
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestRunSummary_MalformedPsychotypeUsesDefaults(t *testing.T) {
	client := &llm.MockClient{Script: []llm.MockReply{
		{Generation: llm.Raw("сводка")},
		{Generation: llm.Raw("```json\n" + consolidatedJSON + "\n```")},
		{Generation: llm.Raw("Психотип: интроверт")},
	}}
	svc, store := newSummaryFixture(t, client, 0.7)

	res, err := svc.RunSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("run summary: %v", err)
	}
	if res.Psychotype.Label != domain.DefaultPsychotypeLabel || res.Psychotype.Description != domain.DefaultPsychotypeDescription {
		t.Fatalf("expected default psychotype, got %+v", res.Psychotype)
	}
	emp, _ := store.Employees().GetByID(context.Background(), 7)
	if emp.Psychotype == nil || *emp.Psychotype != domain.DefaultPsychotypeLabel {
		t.Fatalf("expected default psychotype stored, got %+v", emp)
	}
}

func TestRunSummary_PsychotypeLLMErrorUsesDefaults(t *testing.T) {
	client := &llm.MockClient{Script: []llm.MockReply{
		{Generation: llm.Raw("сводка")},
		{Generation: llm.Structured(json.RawMessage(consolidatedJSON))},
		{Err: &llm.RequestError{StatusCode: 503, Message: "busy"}},
	}}
	svc, store := newSummaryFixture(t, client, 0.7)

	res, err := svc.RunSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("run summary: %v", err)
	}
	if res.Psychotype.Label != domain.DefaultPsychotypeLabel {
		t.Fatalf("expected default psychotype, got %+v", res.Psychotype)
	}
	if store.SavedRuns() != 1 {
		t.Fatalf("expected one saved run, got %d", store.SavedRuns())
	}
}

func TestRunSummary_BatchFailureAborts(t *testing.T) {
	client := &llm.MockClient{Script: []llm.MockReply{
		{Err: &llm.RequestError{StatusCode: 502, Message: "bad gateway"}},
	}}
	svc, store := newSummaryFixture(t, client, 1.0)

	_, err := svc.RunSummary(context.Background(), 7)
	if !errors.Is(err, llm.ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if stage, _ := StageOf(err); stage != StagePerBatchSummarizing {
		t.Fatalf("expected per-batch stage, got %v", stage)
	}
	if client.Calls() != 1 || store.SavedRuns() != 0 {
		t.Fatalf("expected abort after first call without writes")
	}
}

func TestRunSummary_ConsolidationParseError(t *testing.T) {
	client := &llm.MockClient{Script: []llm.MockReply{
		{Generation: llm.Raw("сводка")},
		{Generation: llm.Raw("Сотрудник в целом хороший.")},
	}}
	svc, store := newSummaryFixture(t, client, 1.0)

	_, err := svc.RunSummary(context.Background(), 7)
	if !errors.Is(err, ErrConsolidationParse) {
		t.Fatalf("expected ErrConsolidationParse, got %v", err)
	}
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Stage != StageConsolidating || perr.EmployeeID != 7 {
		t.Fatalf("unexpected pipeline error: %+v", perr)
	}
	if store.SavedRuns() != 0 {
		t.Fatalf("expected no writes")
	}
}

func TestRunSummary_RunInProgress(t *testing.T) {
	locker := NewLocalRunLocker()
	release, err := locker.Acquire(context.Background(), 7)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	client := &llm.MockClient{Response: llm.Raw("x")}
	_, store := newSummaryFixture(t, client, 1.0)
	svc := NewSummaryService(client, store.Employees(), store.Aspects(), store.Feedback(), store.Summaries(), locker, 0, zap.NewNop())

	if _, err := svc.RunSummary(context.Background(), 7); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if client.Calls() != 0 {
		t.Fatalf("expected no llm calls")
	}
}
