package domain

// User is the rider profile the engine reads for preference gating and
// participant snapshots. Account management itself lives outside the engine.
type User struct {
	ID         string
	Name       string
	Gender     string
	Department string
	Verified   bool
	PushToken  string
}
