package models

// QueryResultSettings carries the paging and sorting directives attached to
// list-returning backend calls. The invoker guarantees it is never absent on
// the wire: when a caller omits it, defaults are synthesized before dispatch.
type QueryResultSettings struct {
	Paging  Paging   `json:"paging"`
	Sorting *Sorting `json:"sorting,omitempty"`
}

// Paging bounds the result window.
type Paging struct {
	Top  int `json:"top"`
	Skip int `json:"skip"`
}

// Sorting names a sort key and direction.
type Sorting struct {
	Key          string `json:"key"`
	IsDescending bool   `json:"isDescending"`
}

// Normalize applies defaults in place: top falls back to defaultTop when
// unset or invalid, skip is clamped to zero.
func (q *QueryResultSettings) Normalize(defaultTop int) {
	if q.Paging.Top < 1 {
		q.Paging.Top = defaultTop
	}
	if q.Paging.Skip < 0 {
		q.Paging.Skip = 0
	}
}
