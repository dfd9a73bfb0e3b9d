package services

const (
	KeyRateLimit = "coinflip:ratelimit:%s"
)
