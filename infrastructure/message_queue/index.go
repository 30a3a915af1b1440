package messagequeue

import (
	"ekyc.io/infrastructure/env"
	"ekyc.io/infrastructure/logger"
	"ekyc.io/infrastructure/message_queue/asynq"
	queue_tasks "ekyc.io/infrastructure/message_queue/tasks"
	mq_types "ekyc.io/infrastructure/message_queue/types"
)

// TaskQueue is nil when no redis broker is configured; callers then persist
// in-process.
var TaskQueue mq_types.TaskQueueBroker

func StartQueue(cfg env.StorageConfig, persister queue_tasks.VerificationPersister) {
	if cfg.RedisAddr == "" {
		logger.Warning("redis not configured, task queue disabled")
		return
	}
	broker := asynq.NewBroker(cfg.RedisAddr, cfg.RedisPassword, 20)
	broker.Handle(queue_tasks.HandlePersistVerificationTaskName, queue_tasks.HandlePersistVerificationTask(persister))
	if err := broker.Start(); err != nil {
		logger.Error("could not start task queue", logger.LoggerOptions{Key: "error", Data: err})
		broker.Shutdown()
		return
	}
	TaskQueue = broker
}

func StopQueue() {
	if TaskQueue != nil {
		TaskQueue.Shutdown()
	}
}
