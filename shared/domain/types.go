package domain

type (
	UserId   = string
	ThreadId = string
	PostId   = string

	ThreadTitle = string
	PostText    = string
	ImageRef    = string
	ChildIds    = []PostId
)
