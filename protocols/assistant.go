package protocols

import "context"

// Assistant is the generative chat backend. Both calls are opaque prompt flows.
type Assistant interface {
	Answer(ctx context.Context, query string) (string, error)
	SuggestLocations(ctx context.Context, userLocation string) ([]string, error)
}
