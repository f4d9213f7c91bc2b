package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[RetryJobMessage]       = (*RetryJobCommand)(nil)
	_ gocmd.Commander[CleanupMessage]        = (*CleanupCommand)(nil)
	_ gocmd.Commander[StartProcessorMessage] = (*StartProcessorCommand)(nil)
	_ gocmd.Commander[StopProcessorMessage]  = (*StopProcessorCommand)(nil)
)
