// Package types defines the wire message types spoken between the client
// and the sandboxed worker process.
//
//nolint:revive // types is a common Go package naming convention
package types

// RequestKind is the envelope tag for request messages.
// The set of kinds is closed; decoders must reject tags outside it.
type RequestKind string

// Request kinds.
const (
	RequestKindDevices       RequestKind = "devices"
	RequestKindUserID        RequestKind = "user_id"
	RequestKindOpenDevice    RequestKind = "open_device"
	RequestKindInitTransfer  RequestKind = "init_transfer"
	RequestKindPartitions    RequestKind = "partitions"
	RequestKindOpenPartition RequestKind = "open_partition"
	RequestKindGetAttr       RequestKind = "get_attr"
	RequestKindReadDir       RequestKind = "read_dir"
	RequestKindSelectFiles   RequestKind = "select_files"
	RequestKindReport        RequestKind = "report"
	RequestKindWipe          RequestKind = "wipe"
	RequestKindImgDisk       RequestKind = "img_disk"
	RequestKindEnd           RequestKind = "end"
)

// ResponseKind is the envelope tag for response messages.
// Mirrors the request kinds plus the error and status kinds.
type ResponseKind string

// Response kinds.
const (
	ResponseKindDevices       ResponseKind = "devices"
	ResponseKindUserID        ResponseKind = "user_id"
	ResponseKindOpenDevice    ResponseKind = "open_device"
	ResponseKindInitTransfer  ResponseKind = "init_transfer"
	ResponseKindPartitions    ResponseKind = "partitions"
	ResponseKindOpenPartition ResponseKind = "open_partition"
	ResponseKindGetAttr       ResponseKind = "get_attr"
	ResponseKindReadDir       ResponseKind = "read_dir"
	ResponseKindSelectFiles   ResponseKind = "select_files"
	ResponseKindReport        ResponseKind = "report"
	ResponseKindWipe          ResponseKind = "wipe"
	ResponseKindImgDisk       ResponseKind = "img_disk"
	ResponseKindEnd           ResponseKind = "end"
	ResponseKindError         ResponseKind = "error"
	ResponseKindStatus        ResponseKind = "status"
)

var requestKinds = map[RequestKind]struct{}{
	RequestKindDevices:       {},
	RequestKindUserID:        {},
	RequestKindOpenDevice:    {},
	RequestKindInitTransfer:  {},
	RequestKindPartitions:    {},
	RequestKindOpenPartition: {},
	RequestKindGetAttr:       {},
	RequestKindReadDir:       {},
	RequestKindSelectFiles:   {},
	RequestKindReport:        {},
	RequestKindWipe:          {},
	RequestKindImgDisk:       {},
	RequestKindEnd:           {},
}

var responseKinds = map[ResponseKind]struct{}{
	ResponseKindDevices:       {},
	ResponseKindUserID:        {},
	ResponseKindOpenDevice:    {},
	ResponseKindInitTransfer:  {},
	ResponseKindPartitions:    {},
	ResponseKindOpenPartition: {},
	ResponseKindGetAttr:       {},
	ResponseKindReadDir:       {},
	ResponseKindSelectFiles:   {},
	ResponseKindReport:        {},
	ResponseKindWipe:          {},
	ResponseKindImgDisk:       {},
	ResponseKindEnd:           {},
	ResponseKindError:         {},
	ResponseKindStatus:        {},
}

// Known reports whether k belongs to the closed request kind set.
func (k RequestKind) Known() bool {
	_, ok := requestKinds[k]
	return ok
}

// Known reports whether k belongs to the closed response kind set.
func (k ResponseKind) Known() bool {
	_, ok := responseKinds[k]
	return ok
}
