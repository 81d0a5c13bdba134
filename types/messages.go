package types

// Request payloads. One struct per request kind; empty structs are kept
// explicit so every kind has a payload type and encoding stays uniform.

// RequestDevices asks the worker to enumerate transfer endpoints.
type RequestDevices struct {
	// IncludeAlt also lists alternate (network / command) targets.
	IncludeAlt bool `msgpack:"include_alt"`
}

// RequestUserID asks the worker for the identified operator.
type RequestUserID struct{}

// RequestOpenDevice opens a source device for reading.
type RequestOpenDevice struct {
	Device Device `msgpack:"device"`
}

// RequestInitTransfer binds a source and a destination for the session.
type RequestInitTransfer struct {
	// Source and Destination are device handles from a prior devices response.
	Source      uint64    `msgpack:"source"`
	Destination uint64    `msgpack:"destination"`
	Fstype      OutFsType `msgpack:"fstype,omitempty"`
	// Pin is required when the source is a network device.
	Pin *string `msgpack:"pin,omitempty"`
}

// RequestPartitions lists partitions of the opened device.
type RequestPartitions struct{}

// RequestOpenPartition mounts one partition of the opened device.
type RequestOpenPartition struct {
	Index uint32 `msgpack:"index"`
}

// RequestGetAttr fetches attributes of a single path.
type RequestGetAttr struct {
	Path string `msgpack:"path"`
}

// RequestReadDir lists a directory on the opened partition.
type RequestReadDir struct {
	Path string `msgpack:"path"`
}

// RequestSelectFiles selects the paths to transfer and starts the copy.
type RequestSelectFiles struct {
	Selected []string `msgpack:"selected"`
}

// RequestReport fetches the transfer report.
type RequestReport struct{}

// RequestWipe erases a destination device.
type RequestWipe struct {
	ID     uint64    `msgpack:"id"`
	Fstype OutFsType `msgpack:"fstype"`
	// Quick skips overwriting every sector.
	Quick bool `msgpack:"quick"`
}

// RequestImgDisk images a whole source device.
type RequestImgDisk struct {
	ID uint64 `msgpack:"id"`
}

// RequestEnd terminates the session. Always the last exchange.
type RequestEnd struct{}

// Response payloads.

// ResponseDevices carries the enumerated devices. An empty list is a valid
// outcome, not an error.
type ResponseDevices struct {
	Devices []Device `msgpack:"devices"`
}

// ResponseUserID carries the identified operator.
type ResponseUserID struct {
	UserID string `msgpack:"userid"`
}

// ResponseOpenDevice acknowledges an opened device.
type ResponseOpenDevice struct {
	SectorSize uint32 `msgpack:"sector_size"`
	DevSize    uint64 `msgpack:"dev_size"`
}

// ResponseInitTransfer acknowledges the transfer binding.
type ResponseInitTransfer struct{}

// ResponsePartitions carries the partition table of the opened device.
type ResponsePartitions struct {
	Partitions []PartitionInfo `msgpack:"partitions"`
}

// ResponseOpenPartition acknowledges a mounted partition.
type ResponseOpenPartition struct{}

// ResponseGetAttr carries attributes of a single path.
type ResponseGetAttr struct {
	Ftype     FileType `msgpack:"ftype"`
	Size      uint64   `msgpack:"size"`
	Timestamp int64    `msgpack:"timestamp"`
}

// ResponseReadDir carries a directory listing.
type ResponseReadDir struct {
	FilesInfo []FileInfo `msgpack:"filesinfo"`
}

// ResponseSelectFiles acknowledges the selection.
type ResponseSelectFiles struct {
	// SelectedSize is the total size in bytes of the selected files.
	SelectedSize uint64 `msgpack:"selected_size"`
}

// ResponseReport carries the transfer report.
type ResponseReport struct {
	Report map[string]any `msgpack:"report"`
}

// ResponseWipe acknowledges a wipe request; progress follows as a status
// stream terminated by all_done.
type ResponseWipe struct{}

// ResponseImgDisk acknowledges a disk image request; progress follows as a
// status stream terminated by all_done.
type ResponseImgDisk struct{}

// ResponseEnd acknowledges session end.
type ResponseEnd struct{}

// ResponseError is the dedicated business error response. It may answer any
// request; callers must check for it before interpreting any other field.
type ResponseError struct {
	Err string `msgpack:"err"`
}

// ResponseStatus is one element of a streamed progress sequence.
type ResponseStatus struct {
	Status  StatusCode `msgpack:"status"`
	Current uint64     `msgpack:"current"`
	Total   uint64     `msgpack:"total"`
}
