package verification_usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"ekyc.io/application/policy"
	"ekyc.io/entities"
	"ekyc.io/infrastructure/file_upload/types"
	"ekyc.io/infrastructure/imageloader"
	"ekyc.io/infrastructure/logger"
	queue_tasks "ekyc.io/infrastructure/message_queue/tasks"
	mq_types "ekyc.io/infrastructure/message_queue/types"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	resultKeyPrefix  = "verification:"
	counterKeyPrefix = "verification:decisions:"
	recordTimeout    = time.Minute
)

type AuditWriter interface {
	Insert(ctx context.Context, row policy.AuditRow) error
}

type AttemptStore interface {
	CreateOne(ctx context.Context, payload entities.VerificationAttempt) (*entities.VerificationAttempt, error)
	FindOneByFilter(ctx context.Context, filter map[string]interface{}, opts ...*options.FindOneOptions) (*entities.VerificationAttempt, error)
}

type ResultCache interface {
	CreateEntry(ctx context.Context, key string, payload interface{}, ttl time.Duration) bool
	FindOneByteArray(ctx context.Context, key string) *[]byte
	IncrementField(ctx context.Context, key string, amount int64) int64
	FindCounters(ctx context.Context, keys ...string) map[string]int64
}

// Recorder persists attempts after the response is built. Every member may be
// nil; the matching store is then skipped. Failures are logged and never reach
// the caller.
type Recorder struct {
	Audits   AuditWriter
	Attempts AttemptStore
	Cache    ResultCache
	Evidence types.EvidenceStore
	Queue    mq_types.TaskQueueBroker
	CacheTTL time.Duration

	wg sync.WaitGroup
}

func ResultKey(attemptID string) string {
	return resultKeyPrefix + attemptID
}

func CounterKey(decision policy.Decision) string {
	return counterKeyPrefix + string(decision)
}

// Record archives evidence, caches the result and hands the audit row and the
// attempt document to the queue, or persists them in-process without one.
func (r *Recorder) Record(res *Result, in Input) {
	if r == nil || res == nil {
		return
	}
	attempt := AttemptFromResult(res, in)
	audit := res.Policy.Audit(res.AttemptID, res.ProcessedAt)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		attempt.Evidence = r.archive(ctx, res.AttemptID, in)
		r.cache(ctx, res)
		r.dispatch(ctx, attempt, audit)
	}()
}

// Wait blocks until every pending record has finished.
func (r *Recorder) Wait() {
	if r != nil {
		r.wg.Wait()
	}
}

func (r *Recorder) archive(ctx context.Context, attemptID string, in Input) []entities.EvidenceRef {
	refs := []entities.EvidenceRef{}
	if r.Evidence == nil {
		return refs
	}
	images := []struct {
		kind string
		img  image.Image
	}{{"front", in.Front}, {"back", in.Back}, {"selfie", in.Selfie}}
	for _, item := range images {
		if item.img == nil {
			continue
		}
		data, err := imageloader.EncodeJPEG(item.img)
		if err != nil {
			logger.Error("could not encode evidence image", logger.LoggerOptions{Key: "error", Data: err})
			continue
		}
		name := fmt.Sprintf("%s/%s.jpg", attemptID, item.kind)
		if err := r.Evidence.Upload(ctx, name, data, "image/jpeg"); err != nil {
			continue
		}
		refs = append(refs, entities.EvidenceRef{Kind: item.kind, BlobName: name})
	}
	return refs
}

func (r *Recorder) cache(ctx context.Context, res *Result) {
	if r.Cache == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		logger.Error("could not encode verification result", logger.LoggerOptions{Key: "error", Data: err})
		return
	}
	r.Cache.CreateEntry(ctx, ResultKey(res.AttemptID), payload, r.CacheTTL)
	r.Cache.IncrementField(ctx, CounterKey(res.Decision), 1)
}

func (r *Recorder) dispatch(ctx context.Context, attempt entities.VerificationAttempt, audit policy.AuditRow) {
	if r.Queue != nil {
		task, err := queue_tasks.NewPersistVerificationTask(queue_tasks.PersistVerificationPayload{Attempt: attempt, Audit: audit})
		if err == nil {
			if err = r.Queue.Enqueue(*task); err == nil {
				return
			}
		}
		logger.Warning("could not enqueue verification, persisting in-process", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
	if err := r.Persist(ctx, attempt, audit); err != nil {
		logger.Error("failed to persist verification attempt", logger.LoggerOptions{
			Key:  "attemptID",
			Data: attempt.AttemptID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}

// Persist writes the audit row and the attempt document. It is safe to retry:
// both stores ignore an attempt they already hold.
func (r *Recorder) Persist(ctx context.Context, attempt entities.VerificationAttempt, audit policy.AuditRow) error {
	var errs []error
	if r.Audits != nil {
		if err := r.Audits.Insert(ctx, audit); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Attempts != nil {
		if _, err := r.Attempts.CreateOne(ctx, attempt); err != nil && !mongo.IsDuplicateKeyError(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Find returns a recent result from the cache, falling back to the stored
// attempt. It returns nil when the attempt is unknown.
func (r *Recorder) Find(ctx context.Context, attemptID string) (*Result, error) {
	if r == nil {
		return nil, nil
	}
	if r.Cache != nil {
		if raw := r.Cache.FindOneByteArray(ctx, ResultKey(attemptID)); raw != nil {
			var res Result
			if err := json.Unmarshal(*raw, &res); err == nil {
				return &res, nil
			}
		}
	}
	if r.Attempts == nil {
		return nil, nil
	}
	attempt, err := r.Attempts.FindOneByFilter(ctx, map[string]interface{}{"attemptID": attemptID})
	if err != nil || attempt == nil {
		return nil, err
	}
	return ResultFromAttempt(*attempt), nil
}

// DecisionCounts reads the per-decision counters.
func (r *Recorder) DecisionCounts(ctx context.Context) map[policy.Decision]int64 {
	counts := map[policy.Decision]int64{policy.Approved: 0, policy.ManualReview: 0, policy.Rejected: 0}
	if r == nil || r.Cache == nil {
		return counts
	}
	keys := []string{}
	for decision := range counts {
		keys = append(keys, CounterKey(decision))
	}
	found := r.Cache.FindCounters(ctx, keys...)
	for decision := range counts {
		counts[decision] = found[CounterKey(decision)]
	}
	return counts
}

func AttemptFromResult(res *Result, in Input) entities.VerificationAttempt {
	document := res.Document
	fields := res.Fields
	return entities.VerificationAttempt{
		AttemptID:     res.AttemptID,
		DocumentType:  res.DocumentType,
		Decision:      res.Decision,
		TotalScore:    res.TotalScore,
		ConfigVersion: res.ConfigVersion,
		Scores:        res.Scores,
		Reasons:       res.Reasons,
		Document:      &document,
		Liveness:      res.Liveness,
		FaceMatch:     res.FaceMatch,
		Fields:        &fields,
		Declared:      in.Declared,
		Extracted:     res.Extracted,
		Evidence:      []entities.EvidenceRef{},
		CreatedAt:     res.ProcessedAt,
	}
}

// ResultFromAttempt rebuilds the response from a stored attempt. The policy
// tree itself lives in the audit table and is not repeated here.
func ResultFromAttempt(attempt entities.VerificationAttempt) *Result {
	res := &Result{
		AttemptID:     attempt.AttemptID,
		DocumentType:  attempt.DocumentType,
		Decision:      attempt.Decision,
		TotalScore:    attempt.TotalScore,
		ConfigVersion: attempt.ConfigVersion,
		Scores:        attempt.Scores,
		Reasons:       attempt.Reasons,
		Liveness:      attempt.Liveness,
		FaceMatch:     attempt.FaceMatch,
		Extracted:     attempt.Extracted,
		Skipped:       map[string]string{},
		ProcessedAt:   attempt.CreatedAt,
	}
	if attempt.Document != nil {
		res.Document = *attempt.Document
	}
	if attempt.Fields != nil {
		res.Fields = *attempt.Fields
	}
	return res
}
