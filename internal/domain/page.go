package domain

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// PageRequest 1-based 分页参数
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize 0 值取默认；pageSize 超过上限截断；负数/非法值报 InvalidInput
func (r PageRequest) Normalize() (PageRequest, error) {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	if r.Page < 1 {
		return r, E(KindInvalidInput, "page must be >= 1")
	}
	if r.PageSize < 1 {
		return r, E(KindInvalidInput, "limit must be >= 1")
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	return r, nil
}

func (r PageRequest) Offset() int { return (r.Page - 1) * r.PageSize }

func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalCount: total,
		TotalPages: TotalPages(total, req.PageSize),
	}
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// PageRequestFrom 区分“未传”(nil → 默认) 与“传了非法值”(<=0 → InvalidInput)
func PageRequestFrom(page, size *int) (PageRequest, error) {
	var r PageRequest
	if page != nil {
		if *page < 1 {
			return r, E(KindInvalidInput, "page must be >= 1")
		}
		r.Page = *page
	}
	if size != nil {
		if *size < 1 {
			return r, E(KindInvalidInput, "limit must be >= 1")
		}
		r.PageSize = *size
	}
	return r.Normalize()
}
