package service

// Dependencies holds the storage services the pipeline uses.
// Components receive this struct and can access only the services they need.
type Dependencies struct {
	States        StateStore
	Notifications NotificationStore
	Completions   CompletionTracker
}

// NewDependencies creates a new dependencies container.
// Services can be nil if not needed - components should handle nil gracefully.
func NewDependencies() *Dependencies {
	return &Dependencies{}
}

// WithStateStore sets the buddy state store
func (d *Dependencies) WithStateStore(store StateStore) *Dependencies {
	d.States = store
	return d
}

// WithNotificationStore sets the notification inbox store
func (d *Dependencies) WithNotificationStore(store NotificationStore) *Dependencies {
	d.Notifications = store
	return d
}

// WithCompletionTracker sets the daily completion tracker
func (d *Dependencies) WithCompletionTracker(tracker CompletionTracker) *Dependencies {
	d.Completions = tracker
	return d
}
