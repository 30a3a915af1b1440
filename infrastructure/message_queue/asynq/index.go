package asynq

import (
	"time"

	apperrors "ekyc.io/application/appErrors"
	"ekyc.io/infrastructure/logger"
	mq_types "ekyc.io/infrastructure/message_queue/types"
	"github.com/hibiken/asynq"
)

type AsynqBroker struct {
	Client      *asynq.Client
	Concurrency int
	redisOpt    asynq.RedisClientOpt
	mux         *asynq.ServeMux
	srv         *asynq.Server
}

func NewBroker(addr, password string, concurrency int) *AsynqBroker {
	opt := asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
	}
	return &AsynqBroker{
		Client:      asynq.NewClient(opt),
		Concurrency: concurrency,
		redisOpt:    opt,
		mux:         asynq.NewServeMux(),
	}
}

func (aq *AsynqBroker) Handle(name mq_types.Queues, handler asynq.HandlerFunc) {
	aq.mux.HandleFunc(string(name), handler)
}

// Start runs the workers in the background.
func (aq *AsynqBroker) Start() error {
	aq.srv = asynq.NewServer(aq.redisOpt, asynq.Config{
		Concurrency: aq.Concurrency,
		Queues: map[string]int{
			string(mq_types.High):   7,
			string(mq_types.Medium): 2,
			string(mq_types.Low):    1,
		},
	})
	if err := aq.srv.Start(aq.mux); err != nil {
		return &apperrors.CollaboratorUnavailable{Collaborator: "asynq", Err: err}
	}
	logger.Info("task queue started", logger.LoggerOptions{Key: "concurrency", Data: aq.Concurrency})
	return nil
}

func (aq *AsynqBroker) Enqueue(task mq_types.QueueTask) error {
	if task.TimeOut == 0 {
		task.TimeOut = 60
	}
	if task.MaxRetry == 0 {
		task.MaxRetry = 10
	}
	_, err := aq.Client.Enqueue(asynq.NewTask(string(task.Name), task.Payload),
		asynq.ProcessIn(task.ProcessIn*time.Second),
		asynq.MaxRetry(task.MaxRetry),
		asynq.Timeout(time.Second*task.TimeOut),
		asynq.Queue(string(task.Priority)))
	if err != nil {
		return &apperrors.CollaboratorUnavailable{Collaborator: "asynq", Err: err}
	}
	return nil
}

func (aq *AsynqBroker) Shutdown() {
	if aq.srv != nil {
		aq.srv.Shutdown()
	}
	aq.Client.Close()
}
