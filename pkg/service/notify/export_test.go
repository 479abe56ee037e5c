package notify

var (
	BuildPendingBlocks  = buildPendingBlocks
	BuildResolvedBlocks = buildResolvedBlocks
)
