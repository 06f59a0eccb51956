package service

import "sprout/entities"

type KBService interface {
	UpsertDocument(title, tags, text, sourceURL string) (*entities.GuideDocument, int, error)
	Search(query string, k int) ([]entities.GuideChunk, error)
	DocsMeta(ids []uint) (map[uint]entities.GuideDocument, error)
}
