package mirror

// Collectors read by the external test package.
var (
	ReloadsTotal     = reloadsTotal
	RemoteCallsTotal = remoteCallsTotal
	ExportPollsTotal = exportPollsTotal
)
