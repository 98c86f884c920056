package client

import "sync"

type refreshResult struct {
	token string
	err   error
}

// refresher serializes token refreshes: the first caller performs the
// refresh, every concurrent caller parks on a channel and receives the
// outcome of that one call. This keeps a burst of 401s from turning into
// a burst of refresh requests.
type refresher struct {
	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

func (r *refresher) do(fn func() (string, error)) (string, error) {
	r.mu.Lock()

	if r.refreshing {
		ch := make(chan refreshResult, 1)
		r.waiters = append(r.waiters, ch)
		r.mu.Unlock()

		res := <-ch

		return res.token, res.err
	}

	r.refreshing = true
	r.mu.Unlock()

	token, err := fn()

	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.refreshing = false
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}

	return token, err
}
