package common

// Page is the list envelope every collection endpoint returns.
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func (p Page[T]) Len() int { return len(p.Data) }
