package types

// MessageQuery 封装了查询消息的参数
type MessageQuery struct {
	ChatID   int64  // 0 表示全部会话
	Year     int    // 0 表示全部年份
	PersonID int64  // 0 表示不限发送者
	Keyword  string // 文本包含
	Limit    int
	Offset   int
	Reverse  bool // 是否按时间倒序排列
}

// ImportOptions 导入写入选项
type ImportOptions struct {
	// ReplaceAll 为 true 时先清空全部数据再写入；
	// 否则只替换校验和相同的旧会话
	ReplaceAll bool
}
