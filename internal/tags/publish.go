package tags

import (
	"context"
	"fmt"
	"log"
)

// Sink persists tag vocabularies. Every call is scoped to one source label.
type Sink interface {
	SaveTags(ctx context.Context, label string, tags []string) error
	SaveCardTags(ctx context.Context, label string, cardTags []CardTag) error
	SaveHierarchy(ctx context.Context, label string, edges []Edge) error
}

// PublishResult summarizes what one source wrote.
type PublishResult struct {
	Label    string `json:"label"`
	Cards    int    `json:"cards"`
	Tags     int    `json:"tags"`
	CardTags int    `json:"card_tags"`
	Edges    int    `json:"edges"`
}

// Publish writes each source to sink in order and stops at the first error.
func Publish(ctx context.Context, sink Sink, sources ...Source) ([]PublishResult, error) {
	results := make([]PublishResult, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		label := src.Label()
		log.Printf("[Tags] Publishing %s tags...", label)

		tagNames := src.Tags()
		if err := sink.SaveTags(ctx, label, tagNames); err != nil {
			return results, fmt.Errorf("failed to save %s tags: %w", label, err)
		}

		cardTags := src.CardTags()
		if err := sink.SaveCardTags(ctx, label, cardTags); err != nil {
			return results, fmt.Errorf("failed to save %s card tags: %w", label, err)
		}

		edges := src.Hierarchy()
		if err := sink.SaveHierarchy(ctx, label, edges); err != nil {
			return results, fmt.Errorf("failed to save %s tag hierarchy: %w", label, err)
		}

		result := PublishResult{
			Label:    label,
			Cards:    len(src.Cards()),
			Tags:     len(tagNames),
			CardTags: len(cardTags),
			Edges:    len(edges),
		}
		log.Printf("[Tags] Published %s: %d tags, %d card tags over %d cards, %d edges",
			label, result.Tags, result.CardTags, result.Cards, result.Edges)
		results = append(results, result)
	}
	return results, nil
}
