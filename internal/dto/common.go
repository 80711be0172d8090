package dto

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest 分页查询参数
type PageRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Normalize 填充默认值并限制 page_size 上限
func (p *PageRequest) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

// Offset 当前页偏移量
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}
