package client

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/getmockd/canonrest/pkg/resource"
)

// ErrNoChange may be returned by an UpdateWithRetry mutate function to stop
// without writing.
var ErrNoChange = errors.New("no change")

// UpdateWithRetry runs a read-modify-write cycle on key: Get, mutate, then
// Replace with the fetched tag as If-Match. A 412 means another writer got
// there first, so the cycle restarts after an exponential backoff. Other
// errors, including those from mutate, stop immediately.
func (c *Client) UpdateWithRetry(ctx context.Context, key int, mutate func(*resource.Resource) error) (resource.Resource, error) {
	var result resource.Resource

	op := func() error {
		current, err := c.Get(ctx, key)
		if err != nil {
			return backoff.Permanent(err)
		}

		next := current
		if err := mutate(&next); err != nil {
			if errors.Is(err, ErrNoChange) {
				result = current
				return nil
			}
			return backoff.Permanent(err)
		}
		next.Key = current.Key
		next.Tag = current.Tag

		updated, err := c.Replace(ctx, next)
		if err != nil {
			if IsPreconditionFailed(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = updated
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialDelay
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return resource.Resource{}, err
	}
	return result, nil
}
