package queue_tasks

import (
	"context"
	"encoding/json"

	"ekyc.io/application/policy"
	"ekyc.io/entities"
	"ekyc.io/infrastructure/logger"
	mq_types "ekyc.io/infrastructure/message_queue/types"
	"github.com/hibiken/asynq"
)

var HandlePersistVerificationTaskName mq_types.Queues = "persist_verification"

type PersistVerificationPayload struct {
	Attempt entities.VerificationAttempt
	Audit   policy.AuditRow
}

// VerificationPersister writes the audit row and the attempt record.
type VerificationPersister interface {
	Persist(ctx context.Context, attempt entities.VerificationAttempt, audit policy.AuditRow) error
}

func NewPersistVerificationTask(payload PersistVerificationPayload) (*mq_types.QueueTask, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &mq_types.QueueTask{
		Name:     HandlePersistVerificationTaskName,
		Payload:  raw,
		Priority: mq_types.High,
		TimeOut:  30,
		MaxRetry: 5,
	}, nil
}

func HandlePersistVerificationTask(persister VerificationPersister) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PersistVerificationPayload
		err := json.Unmarshal(t.Payload(), &payload)
		if err != nil {
			logger.Error("an error occured while unmarshalling persist verification payload", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return err
		}
		if err := persister.Persist(ctx, payload.Attempt, payload.Audit); err != nil {
			logger.Error("failed to persist verification attempt", logger.LoggerOptions{
				Key:  "attemptID",
				Data: payload.Attempt.AttemptID,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return err
		}
		return nil
	}
}
