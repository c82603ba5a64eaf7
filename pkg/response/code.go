package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 认证模块错误 100xx
	ErrAuthFailed   = 10001
	ErrTokenInvalid = 10002
	ErrNoPermission = 10003

	// 社区模块错误 200xx
	ErrPostNotFound    = 20001
	ErrCommentNotFound = 20002
	ErrReactionInvalid = 20003
	ErrPostNotVisible  = 20004

	// 文档模块错误 300xx
	ErrDocumentNotFound   = 30001
	ErrDocumentProcessing = 30002

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
