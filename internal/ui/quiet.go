package ui

// quietPresenter drains events without output. Failures still reach the
// user through the engine's returned error and the exit code.
type quietPresenter struct{}

func (quietPresenter) Run(events <-chan Event) error {
	for range events {
	}
	return nil
}

func (quietPresenter) Summary() string { return "" }
