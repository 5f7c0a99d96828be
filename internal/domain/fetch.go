package domain

// FetchState wraps a remote-sourced value. While Loading is true the settled
// pair is not meaningful; Err is cleared the instant a new fetch begins. A
// failed fetch keeps the previous Data so the screen does not go blank.
type FetchState[T any] struct {
	Data    T      `json:"data"`
	Loading bool   `json:"loading"`
	Err     string `json:"error,omitempty"`
}
