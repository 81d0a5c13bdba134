package types

// StatusCode identifies the phase reported by a streamed status response.
type StatusCode string

// Status codes. AllDone is the distinguished terminal code: a status stream
// ends on the first all_done and no further responses are valid on that
// operation.
const (
	StatusUnknown   StatusCode = "unknown"
	StatusReadSrc   StatusCode = "read_src"
	StatusAnalyze   StatusCode = "analyze"
	StatusDlSrc     StatusCode = "dl_src"
	StatusMkArchive StatusCode = "mk_archive"
	StatusMkFs      StatusCode = "mk_fs"
	StatusDiskImg   StatusCode = "disk_img"
	StatusExecCmd   StatusCode = "exec_cmd"
	StatusWipe      StatusCode = "wipe"
	StatusAllDone   StatusCode = "all_done"
)

// IsTerminal reports whether this code ends a status stream.
func (s StatusCode) IsTerminal() bool {
	return s == StatusAllDone
}
