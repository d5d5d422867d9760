package query

import "github.com/futig/virtual-ta/internal/entity"

// toAnswerResponse guarantees links serialise as [] rather than null
func toAnswerResponse(a *entity.Answer) *entity.Answer {
	links := a.Links
	if links == nil {
		links = []entity.Link{}
	}
	return &entity.Answer{
		Answer: a.Answer,
		Links:  links,
	}
}
