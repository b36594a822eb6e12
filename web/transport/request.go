package transport

// RequestIDKey 请求编号在 gin.Context 中的键，响应头为 X-Request-ID
const RequestIDKey = "request_id"

// PaginationQuery 定义了列表请求的通用分页参数。
type PaginationQuery struct {
	Limit  int `form:"limit,default=100"`
	Offset int `form:"offset,default=0"`
}

// KeywordQuery 定义了一个通用的搜索参数。
type KeywordQuery struct {
	Keyword string `form:"keyword"`
}

// YearQuery 年份过滤，缺省时为 nil
type YearQuery struct {
	Year *int `form:"year"`
}
