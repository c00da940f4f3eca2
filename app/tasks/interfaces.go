package tasks

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application and the API handlers to queue summary
// generation work without blocking request handling.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
