package transcript

import (
	"context"

	"google.golang.org/api/youtube/v3"
)

type Youtube struct {
	Client *youtube.Service
}

func NewYoutube(client *youtube.Service) *Youtube {
	return &Youtube{Client: client}
}

func (y *Youtube) Search(ctx context.Context, query string) ([]string, error) {
	call := y.Client.Search.
		List([]string{"id"}).
		Q(query).
		Type("video").
		MaxResults(5).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return []string{}, err
	}

	ids := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		ids = append(ids, item.Id.VideoId)
	}

	return ids, nil
}
